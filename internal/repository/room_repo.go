package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindByBookID(ctx context.Context, bookID uuid.UUID) (*model.Room, error)
	Create(ctx context.Context, room *model.Room) error
	// RecordMessage applies the daily counter rollover for one accepted
	// message under a row lock, so concurrent posts crossing midnight
	// serialize per room.
	RecordMessage(ctx context.Context, roomID uuid.UUID, now time.Time) error

	FindMembership(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error)
	CreateMembership(ctx context.Context, membership *model.Membership) error
	DeleteMembership(ctx context.Context, roomID, userID uuid.UUID) error
	SaveMembership(ctx context.Context, membership *model.Membership) error
	ListMemberships(ctx context.Context, roomID uuid.UUID) ([]model.Membership, error)
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindByBookID(ctx context.Context, bookID uuid.UUID) (*model.Room, error) {
	var rooms []model.Room
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Limit(1).Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, nil
	}
	return &rooms[0], nil
}

func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepository) RecordMessage(ctx context.Context, roomID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room model.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", roomID).
			First(&room).Error; err != nil {
			return err
		}
		room.RecordMessage(now)
		return tx.Save(&room).Error
	})
}

func (r *roomRepository) FindMembership(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error) {
	// Find with slice to avoid "record not found" log noise from First()
	var memberships []model.Membership
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Limit(1).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	return &memberships[0], nil
}

func (r *roomRepository) CreateMembership(ctx context.Context, membership *model.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *roomRepository) DeleteMembership(ctx context.Context, roomID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&model.Membership{}).Error
}

func (r *roomRepository) SaveMembership(ctx context.Context, membership *model.Membership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

func (r *roomRepository) ListMemberships(ctx context.Context, roomID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Find(&memberships).Error
	return memberships, err
}
