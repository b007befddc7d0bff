package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/directory"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/repository"
	"github.com/pagebound/bookchat/pkg/apperror"
)

type RoomService interface {
	// GetOrCreateRoom returns the book's room, creating it on first
	// access. Exactly one room exists per book.
	GetOrCreateRoom(ctx context.Context, bookID uuid.UUID) (*model.Room, error)
	// Join is an upsert: a second join returns the existing membership
	// without error.
	Join(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error)
	Leave(ctx context.Context, roomID, userID uuid.UUID) error
	Mute(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error)
	Unmute(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error)
	// MarkRead advances the member's last-read watermark to the given
	// message's timestamp. A watermark never moves backward; such calls
	// are silent no-ops.
	MarkRead(ctx context.Context, roomID, userID, uptoMessageID uuid.UUID) (*model.Membership, error)
}

type roomService struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	catalog     directory.BookCatalog
	activities  ActivityService
}

func NewRoomService(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, catalog directory.BookCatalog, activities ActivityService) RoomService {
	return &roomService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		catalog:     catalog,
		activities:  activities,
	}
}

func (s *roomService) GetOrCreateRoom(ctx context.Context, bookID uuid.UUID) (*model.Room, error) {
	room, err := s.roomRepo.FindByBookID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	exists, err := s.catalog.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.ErrBookNotFound
	}

	room = &model.Room{
		BookID:   bookID,
		IsActive: true,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		// A concurrent first access may have won the unique index race.
		existing, findErr := s.roomRepo.FindByBookID(ctx, bookID)
		if findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return room, nil
}

func (s *roomService) Join(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.ErrRoomNotFound
	}

	existing, err := s.roomRepo.FindMembership(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	membership := &model.Membership{
		RoomID: roomID,
		UserID: userID,
	}
	if err := s.roomRepo.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}

	// Joining lands in the member's own feed; it never notifies anyone.
	activity := &model.Activity{
		UserID:  userID,
		ActorID: userID,
		Kind:    model.KindJoinedRoom,
		ActivityTargets: model.ActivityTargets{
			RoomID: &room.ID,
			BookID: &room.BookID,
		},
	}
	if _, err := s.activities.Record(ctx, activity); err != nil {
		log.Printf("room: recording join activity failed: %v", err)
	}

	return membership, nil
}

func (s *roomService) Leave(ctx context.Context, roomID, userID uuid.UUID) error {
	membership, err := s.roomRepo.FindMembership(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperror.ErrNotMember
	}
	// Historical messages stay; only the membership row goes.
	return s.roomRepo.DeleteMembership(ctx, roomID, userID)
}

func (s *roomService) Mute(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error) {
	return s.setMuted(ctx, roomID, userID, true)
}

func (s *roomService) Unmute(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error) {
	return s.setMuted(ctx, roomID, userID, false)
}

func (s *roomService) setMuted(ctx context.Context, roomID, userID uuid.UUID, muted bool) (*model.Membership, error) {
	membership, err := s.roomRepo.FindMembership(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperror.ErrNotMember
	}

	membership.IsMuted = muted
	if muted {
		now := time.Now()
		membership.MutedAt = &now
	} else {
		membership.MutedAt = nil
	}
	if err := s.roomRepo.SaveMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *roomService) MarkRead(ctx context.Context, roomID, userID, uptoMessageID uuid.UUID) (*model.Membership, error) {
	membership, err := s.roomRepo.FindMembership(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperror.ErrNotMember
	}

	message, err := s.messageRepo.FindByID(ctx, uptoMessageID)
	if err != nil {
		return nil, err
	}
	if message == nil || message.RoomID != roomID {
		return nil, apperror.ErrMessageNotFound
	}

	if membership.LastReadAt != nil && !message.CreatedAt.After(*membership.LastReadAt) {
		// Watermarks only move forward.
		return membership, nil
	}

	watermark := message.CreatedAt
	membership.LastReadAt = &watermark
	if err := s.roomRepo.SaveMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}
