package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"gorm.io/gorm"
)

type BookRepository interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
