package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Message, error)
	Save(ctx context.Context, message *model.Message) error
	// ListByRoom returns messages in reverse-chronological order. A non-nil
	// before cursor restricts to messages created strictly before the
	// message it names. Deleted rows are included; the service renders them
	// as tombstones.
	ListByRoom(ctx context.Context, roomID uuid.UUID, before *model.Message, limit int) ([]model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

func (r *messageRepository) Save(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *messageRepository) ListByRoom(ctx context.Context, roomID uuid.UUID, before *model.Message, limit int) ([]model.Message, error) {
	query := r.db.WithContext(ctx).Where("room_id = ?", roomID)
	if before != nil {
		// Keyset pagination: created_at with id tiebreak keeps the cursor
		// stable under equal timestamps.
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID,
		)
	}

	var messages []model.Message
	err := query.
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
