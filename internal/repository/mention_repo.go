package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MentionRepository interface {
	// Create inserts the mention, ignoring the write when the unique
	// (source, user) row already exists. Returns true when a new row was
	// actually inserted.
	Create(ctx context.Context, mention *model.Mention) (bool, error)
	ListBySource(ctx context.Context, sourceType string, sourceID uuid.UUID) ([]model.Mention, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Mention, error)
	// MarkRead transitions one user's mention on a source to read. Rows
	// already read keep their original read_at.
	MarkRead(ctx context.Context, sourceType string, sourceID, userID uuid.UUID, readAt time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) error
}

type mentionRepository struct {
	db *gorm.DB
}

func NewMentionRepository(db *gorm.DB) MentionRepository {
	return &mentionRepository{db: db}
}

func (r *mentionRepository) Create(ctx context.Context, mention *model.Mention) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(mention)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *mentionRepository) ListBySource(ctx context.Context, sourceType string, sourceID uuid.UUID) ([]model.Mention, error) {
	var mentions []model.Mention
	err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Find(&mentions).Error
	return mentions, err
}

func (r *mentionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Mention, error) {
	var mentions []model.Mention
	err := r.db.WithContext(ctx).
		Where("mentioned_user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&mentions).Error
	return mentions, err
}

func (r *mentionRepository) MarkRead(ctx context.Context, sourceType string, sourceID, userID uuid.UUID, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Mention{}).
		Where("source_type = ? AND source_id = ? AND mentioned_user_id = ? AND is_read = ?", sourceType, sourceID, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt}).Error
}

func (r *mentionRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Mention{}).
		Where("mentioned_user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt}).Error
}
