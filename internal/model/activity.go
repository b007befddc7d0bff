package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityKind enumerates the events the feed can carry. Posting a chat
// message is deliberately absent: message push notifications fan out
// directly without a feed entry.
type ActivityKind string

const (
	KindMentionedInChat    ActivityKind = "mentioned_in_chat"
	KindMentionedInComment ActivityKind = "mentioned_in_comment"
	KindReviewComment      ActivityKind = "review_comment"
	KindCommentReply       ActivityKind = "comment_reply"
	KindLikedReview        ActivityKind = "liked_review"
	KindNewFollower        ActivityKind = "new_follower"
	KindFinishedBook       ActivityKind = "finished_book"
	KindWroteReview        ActivityKind = "wrote_review"
	KindJoinedRoom         ActivityKind = "joined_room"
	KindMessageReaction    ActivityKind = "message_reaction"
)

func (k ActivityKind) IsValid() bool {
	switch k {
	case KindMentionedInChat, KindMentionedInComment, KindReviewComment,
		KindCommentReply, KindLikedReview, KindNewFollower,
		KindFinishedBook, KindWroteReview, KindJoinedRoom,
		KindMessageReaction:
		return true
	}
	return false
}

// ActivityTargets holds the optional references an activity may carry;
// only the ones relevant to its kind are set.
type ActivityTargets struct {
	BookID       *uuid.UUID `gorm:"type:uuid" json:"book_id,omitempty"`
	ReviewID     *uuid.UUID `gorm:"type:uuid" json:"review_id,omitempty"`
	CommentID    *uuid.UUID `gorm:"type:uuid" json:"comment_id,omitempty"`
	TargetUserID *uuid.UUID `gorm:"type:uuid" json:"target_user_id,omitempty"`
	RoomID       *uuid.UUID `gorm:"type:uuid" json:"room_id,omitempty"`
	MessageID    *uuid.UUID `gorm:"type:uuid" json:"message_id,omitempty"`
}

// Activity is one append-only feed entry. UserID is the recipient whose
// feed displays it; ActorID caused the event. IsRead transitions
// false->true exactly once and never reverts.
type Activity struct {
	ID      uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	ActorID uuid.UUID    `gorm:"type:uuid;not null" json:"actor_id"`
	Kind    ActivityKind `gorm:"size:50;not null" json:"kind"`

	ActivityTargets `gorm:"embedded"`

	Metadata  json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsRead    bool            `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
