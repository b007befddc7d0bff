package dto

import "github.com/google/uuid"

type ReactRequest struct {
	MessageID uuid.UUID `json:"message_id" binding:"required"`
	Kind      string    `json:"kind" binding:"required,oneof=thumbs_up heart laugh surprised"`
}
