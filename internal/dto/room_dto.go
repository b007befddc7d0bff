package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
)

type RoomResponse struct {
	ID             uuid.UUID  `json:"id"`
	BookID         uuid.UUID  `json:"book_id"`
	IsActive       bool       `json:"is_active"`
	MessageCount   int64      `json:"message_count"`
	MessagesToday  int64      `json:"messages_today"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	CreatedAt      string     `json:"created_at"`
}

func NewRoomResponse(room *model.Room) RoomResponse {
	return RoomResponse{
		ID:             room.ID,
		BookID:         room.BookID,
		IsActive:       room.IsActive,
		MessageCount:   room.MessageCount,
		MessagesToday:  room.MessagesToday,
		LastActivityAt: room.LastActivityAt,
		CreatedAt:      room.CreatedAt.Format(time.RFC3339),
	}
}

type MembershipResponse struct {
	RoomID     uuid.UUID  `json:"room_id"`
	UserID     uuid.UUID  `json:"user_id"`
	JoinedAt   string     `json:"joined_at"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
	IsMuted    bool       `json:"is_muted"`
	MutedAt    *time.Time `json:"muted_at,omitempty"`
}

func NewMembershipResponse(membership *model.Membership) MembershipResponse {
	return MembershipResponse{
		RoomID:     membership.RoomID,
		UserID:     membership.UserID,
		JoinedAt:   membership.JoinedAt.Format(time.RFC3339),
		LastReadAt: membership.LastReadAt,
		IsMuted:    membership.IsMuted,
		MutedAt:    membership.MutedAt,
	}
}

type MarkReadRequest struct {
	UptoMessageID uuid.UUID `json:"upto_message_id" binding:"required"`
}
