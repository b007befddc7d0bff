package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/dto"
	"github.com/pagebound/bookchat/internal/service"
	"github.com/pagebound/bookchat/pkg/apperror"
	"github.com/pagebound/bookchat/pkg/response"
	"github.com/pagebound/bookchat/pkg/validator"
)

type MessageHandler struct {
	service service.MessageService
}

func NewMessageHandler(service service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Post(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != "" {
		pid, err := uuid.Parse(req.ParentID)
		if err != nil {
			response.ResponseError(c, apperror.ErrInvalidParent)
			return
		}
		parentID = &pid
	}

	message, err := h.service.Post(c.Request.Context(), roomID, userID, req.Body, parentID)
	if err != nil {
		if rateLimitErr, ok := err.(*service.RateLimitError); ok {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitErr.Message})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.NewMessageResponse(message)})
}

func (h *MessageHandler) Edit(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var req dto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	message, err := h.service.Edit(c.Request.Context(), messageID, userID, req.Body)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewMessageResponse(message)})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	// Moderator capability comes from the identity service; absent here,
	// only authors delete.
	if err := h.service.SoftDelete(c.Request.Context(), messageID, userID, false); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

func (h *MessageHandler) List(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var before *uuid.UUID
	if cursor := c.Query("before"); cursor != "" {
		id, err := uuid.Parse(cursor)
		if err != nil {
			response.ResponseError(c, apperror.ErrBadRequest)
			return
		}
		before = &id
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.ResponseError(c, apperror.ErrBadRequest)
			return
		}
		limit = parsed
	}
	// Same clamp the service applies, so HasMore compares against the
	// page size actually served.
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := h.service.ListMessages(c.Request.Context(), roomID, before, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		data = append(data, dto.NewMessageResponse(&messages[i]))
	}

	meta := dto.CursorMeta{HasMore: len(messages) == limit}
	if meta.HasMore {
		meta.NextCursor = messages[len(messages)-1].ID.String()
	}

	c.JSON(http.StatusOK, dto.MessageListResponse{Data: data, Meta: meta})
}
