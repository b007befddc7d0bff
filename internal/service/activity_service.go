package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/repository"
	"github.com/pagebound/bookchat/pkg/apperror"
)

// ActivityListFilter is the exposed feed filter. Categories group kinds;
// the zero value lists everything.
type ActivityListFilter struct {
	Category   string // comments, replies, mentions, likes, followers, all
	UnreadOnly bool
	Before     *time.Time
	Limit      int
}

type ActivityService interface {
	// Record appends one feed entry and enqueues its fan-out as the last
	// step. Fan-out failures are logged, never surfaced: the in-app entry
	// is already durable.
	Record(ctx context.Context, activity *model.Activity) (*model.Activity, error)
	MarkRead(ctx context.Context, activityID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter ActivityListFilter) ([]model.Activity, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type activityService struct {
	activityRepo repository.ActivityRepository
	mentionRepo  repository.MentionRepository
	fanout       FanoutService
}

func NewActivityService(activityRepo repository.ActivityRepository, mentionRepo repository.MentionRepository, fanout FanoutService) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		mentionRepo:  mentionRepo,
		fanout:       fanout,
	}
}

func (s *activityService) Record(ctx context.Context, activity *model.Activity) (*model.Activity, error) {
	if !activity.Kind.IsValid() {
		return nil, apperror.ErrInvalidInput
	}
	if activity.UserID == uuid.Nil || activity.ActorID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, err
	}

	// Post-commit hook: hand the entry to fan-out. Self-directed entries
	// (joining a room lands in your own feed) never notify.
	if s.fanout != nil && activity.UserID != activity.ActorID {
		task := FanoutTask{
			RecipientID: activity.UserID,
			ActorID:     activity.ActorID,
			Kind:        string(activity.Kind),
			Summary:     summaryForKind(activity.Kind),
			ActivityID:  &activity.ID,
			RoomID:      activity.RoomID,
		}
		if err := s.fanout.Enqueue(ctx, task); err != nil {
			log.Printf("activity: fanout enqueue for %s failed: %v", activity.ID, err)
		}
	}

	return activity, nil
}

func (s *activityService) MarkRead(ctx context.Context, activityID, userID uuid.UUID) error {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return err
	}
	if activity == nil {
		return apperror.ErrNotFound
	}
	if activity.UserID != userID {
		return apperror.ErrNotRecipient
	}
	if activity.IsRead {
		// Idempotent: read_at stays as first written.
		return nil
	}

	now := time.Now()
	if err := s.activityRepo.MarkRead(ctx, activityID, now); err != nil {
		return err
	}
	s.propagateMentionRead(ctx, activity, now)
	return nil
}

func (s *activityService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	if err := s.activityRepo.MarkAllRead(ctx, userID, now); err != nil {
		return err
	}
	if s.mentionRepo != nil {
		if err := s.mentionRepo.MarkAllRead(ctx, userID, now); err != nil {
			log.Printf("activity: marking mentions read for %s failed: %v", userID, err)
		}
	}
	return nil
}

// propagateMentionRead keeps the backing mention row in step with its feed
// entry: reading a mention activity reads the mention.
func (s *activityService) propagateMentionRead(ctx context.Context, activity *model.Activity, readAt time.Time) {
	if s.mentionRepo == nil {
		return
	}

	var sourceType string
	var sourceID *uuid.UUID
	switch activity.Kind {
	case model.KindMentionedInChat:
		sourceType, sourceID = model.MentionSourceMessage, activity.MessageID
	case model.KindMentionedInComment:
		sourceType, sourceID = model.MentionSourceComment, activity.CommentID
	default:
		return
	}
	if sourceID == nil {
		return
	}

	if err := s.mentionRepo.MarkRead(ctx, sourceType, *sourceID, activity.UserID, readAt); err != nil {
		log.Printf("activity: marking mention read for %s failed: %v", activity.UserID, err)
	}
}

func (s *activityService) List(ctx context.Context, userID uuid.UUID, filter ActivityListFilter) ([]model.Activity, error) {
	kinds, err := kindsForCategory(filter.Category)
	if err != nil {
		return nil, err
	}
	return s.activityRepo.ListByRecipient(ctx, userID, repository.ActivityFilter{
		Kinds:      kinds,
		UnreadOnly: filter.UnreadOnly,
		Before:     filter.Before,
		Limit:      filter.Limit,
	})
}

func (s *activityService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.activityRepo.CountUnread(ctx, userID)
}

func kindsForCategory(category string) ([]model.ActivityKind, error) {
	switch category {
	case "", "all":
		return nil, nil
	case "comments":
		return []model.ActivityKind{model.KindReviewComment}, nil
	case "replies":
		return []model.ActivityKind{model.KindCommentReply}, nil
	case "mentions":
		return []model.ActivityKind{model.KindMentionedInChat, model.KindMentionedInComment}, nil
	case "likes":
		return []model.ActivityKind{model.KindLikedReview, model.KindMessageReaction}, nil
	case "followers":
		return []model.ActivityKind{model.KindNewFollower}, nil
	}
	return nil, apperror.ErrInvalidInput
}

func summaryForKind(kind model.ActivityKind) string {
	switch kind {
	case model.KindMentionedInChat:
		return "Someone mentioned you in a book chat"
	case model.KindMentionedInComment:
		return "Someone mentioned you in a comment"
	case model.KindReviewComment:
		return "Someone commented on your review"
	case model.KindCommentReply:
		return "Someone replied to your comment"
	case model.KindLikedReview:
		return "Someone liked your review"
	case model.KindNewFollower:
		return "You have a new follower"
	case model.KindMessageReaction:
		return "Someone reacted to your message"
	case model.KindFinishedBook:
		return "Someone you follow finished a book"
	case model.KindWroteReview:
		return "Someone you follow wrote a review"
	case model.KindJoinedRoom:
		return "Someone joined a book chat"
	}
	return "You have a new notification"
}
