package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReactionKind is the closed set of emoji reactions.
type ReactionKind string

const (
	ReactionThumbsUp  ReactionKind = "thumbs_up"
	ReactionHeart     ReactionKind = "heart"
	ReactionLaugh     ReactionKind = "laugh"
	ReactionSurprised ReactionKind = "surprised"
)

func (k ReactionKind) IsValid() bool {
	switch k {
	case ReactionThumbsUp, ReactionHeart, ReactionLaugh, ReactionSurprised:
		return true
	}
	return false
}

// Reaction is unique per (message, user, kind). A user may hold several
// different kinds on one message, never the same kind twice.
type Reaction struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_msg_user_kind,priority:1;index" json:"message_id"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_msg_user_kind,priority:2" json:"user_id"`
	Kind      ReactionKind `gorm:"size:20;not null;uniqueIndex:idx_reaction_msg_user_kind,priority:3" json:"kind"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
