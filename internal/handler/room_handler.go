package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/dto"
	"github.com/pagebound/bookchat/internal/service"
	"github.com/pagebound/bookchat/pkg/apperror"
	"github.com/pagebound/bookchat/pkg/response"
	"github.com/pagebound/bookchat/pkg/validator"
)

type RoomHandler struct {
	service service.RoomService
}

func NewRoomHandler(service service.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// GetOrCreateRoom resolves a book's room, creating it lazily.
func (h *RoomHandler) GetOrCreateRoom(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	room, err := h.service.GetOrCreateRoom(c.Request.Context(), bookID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewRoomResponse(room)})
}

func (h *RoomHandler) Join(c *gin.Context) {
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

	membership, err := h.service.Join(c.Request.Context(), roomID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewMembershipResponse(membership)})
}

func (h *RoomHandler) Leave(c *gin.Context) {
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

	if err := h.service.Leave(c.Request.Context(), roomID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}

func (h *RoomHandler) Mute(c *gin.Context) {
	h.setMuted(c, true)
}

func (h *RoomHandler) Unmute(c *gin.Context) {
	h.setMuted(c, false)
}

func (h *RoomHandler) setMuted(c *gin.Context, muted bool) {
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

	var membership interface{}
	if muted {
		m, err := h.service.Mute(c.Request.Context(), roomID, userID)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		membership = dto.NewMembershipResponse(m)
	} else {
		m, err := h.service.Unmute(c.Request.Context(), roomID, userID)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		membership = dto.NewMembershipResponse(m)
	}

	c.JSON(http.StatusOK, gin.H{"data": membership})
}

func (h *RoomHandler) MarkRead(c *gin.Context) {
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

	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	membership, err := h.service.MarkRead(c.Request.Context(), roomID, userID, req.UptoMessageID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewMembershipResponse(membership)})
}
