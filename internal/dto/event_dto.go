package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// RecordEventRequest is the ingestion contract for the review and follow
// subsystems: they push their events here, the core never derives them.
type RecordEventRequest struct {
	RecipientID  uuid.UUID       `json:"recipient_id" binding:"required"`
	ActorID      uuid.UUID       `json:"actor_id" binding:"required"`
	Kind         string          `json:"kind" binding:"required,oneof=review_comment comment_reply liked_review new_follower finished_book wrote_review"`
	BookID       *uuid.UUID      `json:"book_id"`
	ReviewID     *uuid.UUID      `json:"review_id"`
	CommentID    *uuid.UUID      `json:"comment_id"`
	TargetUserID *uuid.UUID      `json:"target_user_id"`
	Metadata     json.RawMessage `json:"metadata"`
}

// CommentScanRequest hands review-comment text to mention extraction using
// the same contract as chat messages.
type CommentScanRequest struct {
	AuthorID  uuid.UUID  `json:"author_id" binding:"required"`
	CommentID uuid.UUID  `json:"comment_id" binding:"required"`
	ReviewID  *uuid.UUID `json:"review_id"`
	Text      string     `json:"text" binding:"required"`
}
