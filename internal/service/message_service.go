package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/repository"
	"github.com/pagebound/bookchat/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

type MessageService interface {
	// Post accepts a message into a room. Mention extraction, room counter
	// bookkeeping and member push fan-out run as ordered post-commit
	// hooks; none of them can fail the accepted write.
	Post(ctx context.Context, roomID, userID uuid.UUID, body string, parentID *uuid.UUID) (*model.Message, error)
	Edit(ctx context.Context, messageID, userID uuid.UUID, newBody string) (*model.Message, error)
	// SoftDelete keeps the row for thread integrity and withholds the
	// body. Moderator capability is decided by the caller's collaborator;
	// the core itself only checks authorship.
	SoftDelete(ctx context.Context, messageID, userID uuid.UUID, moderator bool) error
	// ListMessages pages the room reverse-chronologically. Deleted
	// messages appear as tombstones with an empty body so thread shape
	// survives.
	ListMessages(ctx context.Context, roomID uuid.UUID, beforeMessageID *uuid.UUID, limit int) ([]model.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	roomRepo    repository.RoomRepository
	mentions    MentionService
	fanout      FanoutService
	redisClient *redis.Client
	sanitizer   *bluemonday.Policy

	maxLength     int
	editWindow    time.Duration
	rateLimitPost time.Duration
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	roomRepo repository.RoomRepository,
	mentions MentionService,
	fanout FanoutService,
	redisClient *redis.Client,
	maxLength int,
	editWindow time.Duration,
	rateLimitPost time.Duration,
) MessageService {
	return &messageService{
		messageRepo:   messageRepo,
		roomRepo:      roomRepo,
		mentions:      mentions,
		fanout:        fanout,
		redisClient:   redisClient,
		sanitizer:     bluemonday.StrictPolicy(),
		maxLength:     maxLength,
		editWindow:    editWindow,
		rateLimitPost: rateLimitPost,
	}
}

func (s *messageService) Post(ctx context.Context, roomID, userID uuid.UUID, body string, parentID *uuid.UUID) (*model.Message, error) {
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, userID, "chat_post", s.rateLimitPost)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, s.redisClient, userID, "chat_post")
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("you are posting too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	membership, err := s.roomRepo.FindMembership(ctx, roomID, userID)
	if err != nil {
		_ = ClearRateLimit(ctx, s.redisClient, userID, "chat_post")
		return nil, err
	}
	if membership == nil {
		_ = ClearRateLimit(ctx, s.redisClient, userID, "chat_post")
		return nil, apperror.ErrNotMember
	}

	body, err = s.cleanBody(body)
	if err != nil {
		_ = ClearRateLimit(ctx, s.redisClient, userID, "chat_post")
		return nil, err
	}

	if parentID != nil {
		parent, err := s.messageRepo.FindByID(ctx, *parentID)
		if err != nil {
			_ = ClearRateLimit(ctx, s.redisClient, userID, "chat_post")
			return nil, err
		}
		if parent == nil || parent.IsDeleted || parent.RoomID != roomID {
			_ = ClearRateLimit(ctx, s.redisClient, userID, "chat_post")
			return nil, apperror.ErrInvalidParent
		}
	}

	message := &model.Message{
		RoomID:   roomID,
		UserID:   userID,
		ParentID: parentID,
		Body:     body,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		// A rejected post must not consume the cooldown slot.
		_ = ClearRateLimit(ctx, s.redisClient, userID, "chat_post")
		return nil, err
	}

	s.afterAccept(ctx, message)
	return message, nil
}

// afterAccept runs the ordered post-commit hooks for a durable message:
// room counters, mention extraction, member push fan-out. Failures are
// logged and isolated from the accepted write.
func (s *messageService) afterAccept(ctx context.Context, message *model.Message) {
	if err := s.roomRepo.RecordMessage(ctx, message.RoomID, message.CreatedAt); err != nil {
		log.Printf("message: recording room activity for %s failed: %v", message.RoomID, err)
	}

	s.mentions.Scan(ctx, message.UserID, message.Body, MentionSource{
		Type:      model.MentionSourceMessage,
		ID:        message.ID,
		RoomID:    &message.RoomID,
		MessageID: &message.ID,
	})

	s.fanoutToMembers(ctx, message)
}

// fanoutToMembers enqueues a chat-message push for every member except the
// author. Mute suppression happens inside the fan-out pipeline, alongside
// the preference check.
func (s *messageService) fanoutToMembers(ctx context.Context, message *model.Message) {
	if s.fanout == nil {
		return
	}
	memberships, err := s.roomRepo.ListMemberships(ctx, message.RoomID)
	if err != nil {
		log.Printf("message: listing members of %s failed: %v", message.RoomID, err)
		return
	}
	for _, membership := range memberships {
		if membership.UserID == message.UserID {
			continue
		}
		task := FanoutTask{
			RecipientID: membership.UserID,
			ActorID:     message.UserID,
			Kind:        TaskKindChatMessage,
			Summary:     "New message in a book chat",
			RoomID:      &message.RoomID,
		}
		if err := s.fanout.Enqueue(ctx, task); err != nil {
			log.Printf("message: fanout enqueue for %s failed: %v", membership.UserID, err)
		}
	}
}

func (s *messageService) Edit(ctx context.Context, messageID, userID uuid.UUID, newBody string) (*model.Message, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil || message.IsDeleted {
		return nil, apperror.ErrMessageNotFound
	}
	if message.UserID != userID {
		return nil, apperror.ErrNotOwner
	}
	// Stateless deadline: current time against creation time, no timers.
	if time.Since(message.CreatedAt) > s.editWindow {
		return nil, apperror.ErrEditWindowExpired
	}

	newBody, err = s.cleanBody(newBody)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	message.Body = newBody
	message.EditedAt = &now
	if err := s.messageRepo.Save(ctx, message); err != nil {
		return nil, err
	}

	// Re-scan for mentions added by the edit. Mentions are append-only;
	// handles removed by the edit are not retracted.
	s.mentions.Scan(ctx, message.UserID, message.Body, MentionSource{
		Type:      model.MentionSourceMessage,
		ID:        message.ID,
		RoomID:    &message.RoomID,
		MessageID: &message.ID,
	})

	return message, nil
}

func (s *messageService) SoftDelete(ctx context.Context, messageID, userID uuid.UUID, moderator bool) error {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return apperror.ErrMessageNotFound
	}
	if message.IsDeleted {
		return nil
	}
	if message.UserID != userID && !moderator {
		return apperror.ErrNotOwner
	}

	now := time.Now()
	message.IsDeleted = true
	message.DeletedAt = &now
	// Existing mentions and reaction counts survive; only the body goes.
	return s.messageRepo.Save(ctx, message)
}

func (s *messageService) ListMessages(ctx context.Context, roomID uuid.UUID, beforeMessageID *uuid.UUID, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var before *model.Message
	if beforeMessageID != nil {
		cursor, err := s.messageRepo.FindByID(ctx, *beforeMessageID)
		if err != nil {
			return nil, err
		}
		if cursor == nil || cursor.RoomID != roomID {
			return nil, apperror.ErrMessageNotFound
		}
		before = cursor
	}

	messages, err := s.messageRepo.ListByRoom(ctx, roomID, before, limit)
	if err != nil {
		return nil, err
	}

	for i := range messages {
		if messages[i].IsDeleted {
			messages[i].Body = ""
		}
	}
	return messages, nil
}

func (s *messageService) cleanBody(body string) (string, error) {
	body = strings.TrimSpace(s.sanitizer.Sanitize(body))
	if body == "" {
		return "", apperror.ErrInvalidInput
	}
	if utf8.RuneCountInString(body) > s.maxLength {
		return "", apperror.ErrMessageTooLong
	}
	return body, nil
}
