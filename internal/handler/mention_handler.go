package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pagebound/bookchat/internal/dto"
	"github.com/pagebound/bookchat/internal/service"
	"github.com/pagebound/bookchat/pkg/apperror"
	"github.com/pagebound/bookchat/pkg/response"
)

type MentionHandler struct {
	service service.MentionService
}

func NewMentionHandler(service service.MentionService) *MentionHandler {
	return &MentionHandler{service: service}
}

// List returns where the caller has been mentioned, newest first.
func (h *MentionHandler) List(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.ResponseError(c, apperror.ErrBadRequest)
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.ResponseError(c, apperror.ErrBadRequest)
			return
		}
		offset = parsed
	}

	mentions, err := h.service.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data := make([]dto.MentionResponse, 0, len(mentions))
	for i := range mentions {
		data = append(data, dto.NewMentionResponse(&mentions[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}
