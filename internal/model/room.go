package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room is the discussion space for one book. Exactly one room exists per
// book; rooms are created lazily on first access and deactivated, never
// hard-deleted.
type Room struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookID               uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"book_id"`
	IsActive             bool      `gorm:"default:true" json:"is_active"`
	MessageCount         int64     `gorm:"default:0" json:"message_count"`
	MessagesToday        int64     `gorm:"default:0" json:"messages_today"`
	LastMessageResetDate string    `gorm:"size:10" json:"last_message_reset_date"` // YYYY-MM-DD
	LastActivityAt       *time.Time `json:"last_activity_at,omitempty"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// RecordMessage applies the counter bookkeeping for one accepted message.
// The daily counter compares against the room's stored reset date, so the
// first post of a new day resets to 1 exactly once. Callers must hold the
// room row lock; concurrent posts crossing midnight otherwise double-reset.
func (r *Room) RecordMessage(now time.Time) {
	today := now.Format("2006-01-02")
	if r.LastMessageResetDate == today {
		r.MessagesToday++
	} else {
		r.MessagesToday = 1
		r.LastMessageResetDate = today
	}
	r.MessageCount++
	r.LastActivityAt = &now
}

// Membership is a user's state within a room: join time, mute flag and the
// last-read watermark. Unique per (room, user). Leaving removes the row but
// never the user's historical messages.
type Membership struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_membership_room_user,priority:1" json:"room_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_membership_room_user,priority:2" json:"user_id"`
	JoinedAt   time.Time  `gorm:"autoCreateTime" json:"joined_at"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
	IsMuted    bool       `gorm:"default:false" json:"is_muted"`
	MutedAt    *time.Time `json:"muted_at,omitempty"`
}

func (m *Membership) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
