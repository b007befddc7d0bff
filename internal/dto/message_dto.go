package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
)

type PostMessageRequest struct {
	Body     string `json:"body" binding:"required"`
	ParentID string `json:"parent_id"` // Optional, for threaded replies
}

type EditMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

type MessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	RoomID    uuid.UUID  `json:"room_id"`
	UserID    uuid.UUID  `json:"user_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Body      string     `json:"body"`
	IsDeleted bool       `json:"is_deleted"`
	CreatedAt string     `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

func NewMessageResponse(message *model.Message) MessageResponse {
	body := message.Body
	if message.IsDeleted {
		// Tombstone: author stays visible, text does not.
		body = "[deleted]"
	}
	return MessageResponse{
		ID:        message.ID,
		RoomID:    message.RoomID,
		UserID:    message.UserID,
		ParentID:  message.ParentID,
		Body:      body,
		IsDeleted: message.IsDeleted,
		CreatedAt: message.CreatedAt.Format(time.RFC3339),
		EditedAt:  message.EditedAt,
	}
}

type MessageListResponse struct {
	Data []MessageResponse `json:"data"`
	Meta CursorMeta        `json:"meta"`
}
