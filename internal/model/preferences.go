package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationCategory names one toggle in a user's notification settings.
type NotificationCategory string

const (
	CategoryNewFollower        NotificationCategory = "new_follower"
	CategoryReviewComment      NotificationCategory = "review_comment"
	CategoryCommentReply       NotificationCategory = "comment_reply"
	CategoryChatMention        NotificationCategory = "chat_mention"
	CategoryCommentMention     NotificationCategory = "comment_mention"
	CategoryWeeklySummary      NotificationCategory = "weekly_summary"
	CategoryPushChatMessage    NotificationCategory = "push_chat_message"
	CategoryPushActivity       NotificationCategory = "push_activity"
	CategoryPushNewRelease     NotificationCategory = "push_new_release"
	CategoryPushRecommendation NotificationCategory = "push_recommendation"
)

// NotificationPreferences is one row per user, written by the external
// settings service. This core only ever reads it.
type NotificationPreferences struct {
	UserID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	NewFollower        bool      `gorm:"default:true" json:"new_follower"`
	ReviewComment      bool      `gorm:"default:true" json:"review_comment"`
	CommentReply       bool      `gorm:"default:true" json:"comment_reply"`
	ChatMention        bool      `gorm:"default:true" json:"chat_mention"`
	CommentMention     bool      `gorm:"default:true" json:"comment_mention"`
	WeeklySummary      bool      `gorm:"default:true" json:"weekly_summary"`
	PushChatMessage    bool      `gorm:"default:true" json:"push_chat_message"`
	PushActivity       bool      `gorm:"default:true" json:"push_activity"`
	PushNewRelease     bool      `gorm:"default:true" json:"push_new_release"`
	PushRecommendation bool      `gorm:"default:true" json:"push_recommendation"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DefaultNotificationPreferences is the all-enabled row assumed for users
// the settings service has not written yet.
func DefaultNotificationPreferences(userID uuid.UUID) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:             userID,
		NewFollower:        true,
		ReviewComment:      true,
		CommentReply:       true,
		ChatMention:        true,
		CommentMention:     true,
		WeeklySummary:      true,
		PushChatMessage:    true,
		PushActivity:       true,
		PushNewRelease:     true,
		PushRecommendation: true,
	}
}

// Enabled reports whether the given category is switched on.
func (p *NotificationPreferences) Enabled(category NotificationCategory) bool {
	switch category {
	case CategoryNewFollower:
		return p.NewFollower
	case CategoryReviewComment:
		return p.ReviewComment
	case CategoryCommentReply:
		return p.CommentReply
	case CategoryChatMention:
		return p.ChatMention
	case CategoryCommentMention:
		return p.CommentMention
	case CategoryWeeklySummary:
		return p.WeeklySummary
	case CategoryPushChatMessage:
		return p.PushChatMessage
	case CategoryPushActivity:
		return p.PushActivity
	case CategoryPushNewRelease:
		return p.PushNewRelease
	case CategoryPushRecommendation:
		return p.PushRecommendation
	}
	return false
}
