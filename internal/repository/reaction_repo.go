package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"gorm.io/gorm"
)

type ReactionRepository interface {
	Find(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) (*model.Reaction, error)
	Create(ctx context.Context, reaction *model.Reaction) error
	Delete(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) error
	CountsByMessage(ctx context.Context, messageID uuid.UUID) (map[model.ReactionKind]int64, error)
	KindsByUser(ctx context.Context, messageID, userID uuid.UUID) ([]model.ReactionKind, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Find(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) (*model.Reaction, error) {
	var reactions []model.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND kind = ?", messageID, userID, kind).
		Limit(1).
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	if len(reactions) == 0 {
		return nil, nil
	}
	return &reactions[0], nil
}

func (r *reactionRepository) Create(ctx context.Context, reaction *model.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *reactionRepository) Delete(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) error {
	return r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND kind = ?", messageID, userID, kind).
		Delete(&model.Reaction{}).Error
}

func (r *reactionRepository) CountsByMessage(ctx context.Context, messageID uuid.UUID) (map[model.ReactionKind]int64, error) {
	type Result struct {
		Kind  model.ReactionKind
		Count int64
	}
	var results []Result

	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("kind, count(*) as count").
		Where("message_id = ?", messageID).
		Group("kind").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ReactionKind]int64)
	for _, res := range results {
		counts[res.Kind] = res.Count
	}
	return counts, nil
}

func (r *reactionRepository) KindsByUser(ctx context.Context, messageID, userID uuid.UUID) ([]model.ReactionKind, error) {
	var kinds []model.ReactionKind
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Pluck("kind", &kinds).Error
	return kinds, err
}
