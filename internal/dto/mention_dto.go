package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
)

type MentionResponse struct {
	ID         uuid.UUID  `json:"id"`
	SourceType string     `json:"source_type"`
	SourceID   uuid.UUID  `json:"source_id"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  string     `json:"created_at"`
}

func NewMentionResponse(mention *model.Mention) MentionResponse {
	return MentionResponse{
		ID:         mention.ID,
		SourceType: mention.SourceType,
		SourceID:   mention.SourceID,
		IsRead:     mention.IsRead,
		ReadAt:     mention.ReadAt,
		CreatedAt:  mention.CreatedAt.Format(time.RFC3339),
	}
}
