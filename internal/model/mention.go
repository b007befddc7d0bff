package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mention source kinds. Chat messages and review comments feed the same
// extraction path.
const (
	MentionSourceMessage = "message"
	MentionSourceComment = "comment"
)

// Mention links a text source to a named user. Unique per (source, user):
// a handle repeated in one message is recorded once. Mentions are
// append-only; editing the source never retracts them, and deleting the
// source keeps mention records already surfaced.
type Mention struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SourceType      string     `gorm:"size:20;not null;uniqueIndex:idx_mention_source_user,priority:1" json:"source_type"`
	SourceID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_mention_source_user,priority:2" json:"source_id"`
	MentionedUserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_mention_source_user,priority:3;index" json:"mentioned_user_id"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	IsRead          bool       `gorm:"default:false" json:"is_read"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
}

func (m *Mention) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
