package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"gorm.io/gorm"
)

type PreferenceRepository interface {
	// GetByUserID returns the user's notification preferences, falling back
	// to the all-enabled defaults when the settings service has not written
	// a row yet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error)
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	var prefs []model.NotificationPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&prefs).Error
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return model.DefaultNotificationPreferences(userID), nil
	}
	return &prefs[0], nil
}
