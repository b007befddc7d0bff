package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/repository"
	"github.com/pagebound/bookchat/pkg/apperror"
)

// ReactionSummary is the aggregated view for one message: counts per kind
// plus the kinds the requesting user currently holds.
type ReactionSummary struct {
	Counts    map[model.ReactionKind]int64 `json:"counts"`
	UserKinds []model.ReactionKind         `json:"user_kinds"`
}

type ReactionService interface {
	// React adds the reaction and returns refreshed counts. Reacting
	// twice with the same kind is an idempotent no-op, not an error.
	React(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) (*ReactionSummary, error)
	// Unreact removes the reaction if present; absent rows are a no-op,
	// symmetric with React.
	Unreact(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) (*ReactionSummary, error)
	GetReactions(ctx context.Context, messageID, requestingUserID uuid.UUID) (*ReactionSummary, error)
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
	messageRepo  repository.MessageRepository
	roomRepo     repository.RoomRepository
	activities   ActivityService
}

func NewReactionService(reactionRepo repository.ReactionRepository, messageRepo repository.MessageRepository, roomRepo repository.RoomRepository, activities ActivityService) ReactionService {
	return &reactionService{
		reactionRepo: reactionRepo,
		messageRepo:  messageRepo,
		roomRepo:     roomRepo,
		activities:   activities,
	}
}

func (s *reactionService) React(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) (*ReactionSummary, error) {
	if !kind.IsValid() {
		return nil, apperror.ErrInvalidReactionKind
	}

	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil || message.IsDeleted {
		return nil, apperror.ErrMessageNotFound
	}

	membership, err := s.roomRepo.FindMembership(ctx, message.RoomID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperror.ErrNotMember
	}

	existing, err := s.reactionRepo.Find(ctx, messageID, userID, kind)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		reaction := &model.Reaction{
			MessageID: messageID,
			UserID:    userID,
			Kind:      kind,
		}
		if err := s.reactionRepo.Create(ctx, reaction); err != nil {
			return nil, err
		}

		if message.UserID != userID {
			activity := &model.Activity{
				UserID:  message.UserID,
				ActorID: userID,
				Kind:    model.KindMessageReaction,
				ActivityTargets: model.ActivityTargets{
					RoomID:    &message.RoomID,
					MessageID: &message.ID,
				},
			}
			if _, err := s.activities.Record(ctx, activity); err != nil {
				log.Printf("reaction: recording activity failed: %v", err)
			}
		}
	}

	return s.summary(ctx, messageID, userID)
}

func (s *reactionService) Unreact(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) (*ReactionSummary, error) {
	if !kind.IsValid() {
		return nil, apperror.ErrInvalidReactionKind
	}

	if err := s.reactionRepo.Delete(ctx, messageID, userID, kind); err != nil {
		return nil, err
	}
	return s.summary(ctx, messageID, userID)
}

func (s *reactionService) GetReactions(ctx context.Context, messageID, requestingUserID uuid.UUID) (*ReactionSummary, error) {
	return s.summary(ctx, messageID, requestingUserID)
}

func (s *reactionService) summary(ctx context.Context, messageID, userID uuid.UUID) (*ReactionSummary, error) {
	counts, err := s.reactionRepo.CountsByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	kinds, err := s.reactionRepo.KindsByUser(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	return &ReactionSummary{Counts: counts, UserKinds: kinds}, nil
}
