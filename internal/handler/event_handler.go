package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagebound/bookchat/internal/dto"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/service"
	"github.com/pagebound/bookchat/pkg/response"
	"github.com/pagebound/bookchat/pkg/validator"
)

// EventHandler is the ingestion surface for the review and follow
// subsystems. They own their events and push them here; this core only
// records and fans out.
type EventHandler struct {
	activities service.ActivityService
	mentions   service.MentionService
}

func NewEventHandler(activities service.ActivityService, mentions service.MentionService) *EventHandler {
	return &EventHandler{
		activities: activities,
		mentions:   mentions,
	}
}

func (h *EventHandler) RecordEvent(c *gin.Context) {
	var req dto.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	activity := &model.Activity{
		UserID:  req.RecipientID,
		ActorID: req.ActorID,
		Kind:    model.ActivityKind(req.Kind),
		ActivityTargets: model.ActivityTargets{
			BookID:       req.BookID,
			ReviewID:     req.ReviewID,
			CommentID:    req.CommentID,
			TargetUserID: req.TargetUserID,
		},
		Metadata: req.Metadata,
	}

	recorded, err := h.activities.Record(c.Request.Context(), activity)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.NewActivityResponse(recorded)})
}

func (h *EventHandler) ScanComment(c *gin.Context) {
	var req dto.CommentScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	mentions := h.mentions.Scan(c.Request.Context(), req.AuthorID, req.Text, service.MentionSource{
		Type:      model.MentionSourceComment,
		ID:        req.CommentID,
		CommentID: &req.CommentID,
		ReviewID:  req.ReviewID,
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"mentions": len(mentions)}})
}
