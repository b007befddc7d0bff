package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
)

type ActivityActor struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type ActivityResponse struct {
	ID           uuid.UUID       `json:"id"`
	Kind         string          `json:"kind"`
	Actor        *ActivityActor  `json:"actor,omitempty"`
	BookID       *uuid.UUID      `json:"book_id,omitempty"`
	ReviewID     *uuid.UUID      `json:"review_id,omitempty"`
	CommentID    *uuid.UUID      `json:"comment_id,omitempty"`
	TargetUserID *uuid.UUID      `json:"target_user_id,omitempty"`
	RoomID       *uuid.UUID      `json:"room_id,omitempty"`
	MessageID    *uuid.UUID      `json:"message_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	IsRead       bool            `json:"is_read"`
	ReadAt       *time.Time      `json:"read_at,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

func NewActivityResponse(activity *model.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:           activity.ID,
		Kind:         string(activity.Kind),
		BookID:       activity.BookID,
		ReviewID:     activity.ReviewID,
		CommentID:    activity.CommentID,
		TargetUserID: activity.TargetUserID,
		RoomID:       activity.RoomID,
		MessageID:    activity.MessageID,
		Metadata:     activity.Metadata,
		IsRead:       activity.IsRead,
		ReadAt:       activity.ReadAt,
		CreatedAt:    activity.CreatedAt.Format(time.RFC3339),
	}
	if activity.Actor != nil {
		resp.Actor = &ActivityActor{
			ID:        activity.Actor.ID,
			Username:  activity.Actor.Username,
			AvatarURL: activity.Actor.AvatarURL,
		}
	}
	return resp
}

type ActivityListResponse struct {
	Data []ActivityResponse `json:"data"`
	Meta CursorMeta         `json:"meta"`
}

type ActivityListQuery struct {
	Filter     string `form:"filter"`
	UnreadOnly bool   `form:"unread_only"`
	Cursor     string `form:"cursor"` // RFC3339Nano created_at of the last seen entry
	Limit      int    `form:"limit"`
}
