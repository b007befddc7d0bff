package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"gorm.io/gorm"
)

// ActivityFilter narrows a feed listing.
type ActivityFilter struct {
	Kinds      []model.ActivityKind // empty means all kinds
	UnreadOnly bool
	Before     *time.Time // keyset cursor: entries created strictly before
	Limit      int
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error)
	// MarkRead transitions one unread entry to read. Rows already read are
	// left untouched so read_at is written exactly once.
	MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) error
	ListByRecipient(ctx context.Context, userID uuid.UUID, filter ActivityFilter) ([]model.Activity, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	var activities []model.Activity
	err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&activities).Error
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, nil
	}
	return &activities[0], nil
}

func (r *activityRepository) MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt}).Error
}

func (r *activityRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt}).Error
}

func (r *activityRepository) ListByRecipient(ctx context.Context, userID uuid.UUID, filter ActivityFilter) ([]model.Activity, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(filter.Kinds) > 0 {
		query = query.Where("kind IN ?", filter.Kinds)
	}
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if filter.Before != nil {
		query = query.Where("created_at < ?", *filter.Before)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var activities []model.Activity
	err := query.
		Order("created_at desc").
		Limit(limit).
		Preload("Actor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Find(&activities).Error
	return activities, err
}

func (r *activityRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
