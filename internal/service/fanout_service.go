package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/delivery"
	"github.com/pagebound/bookchat/internal/directory"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	FanoutQueueKey = "notification_fanout"

	// TaskKindChatMessage is the one fan-out input with no feed entry
	// behind it: plain room messages push to members without appearing in
	// anyone's activity feed.
	TaskKindChatMessage = "chat_message"
)

// FanoutTask is one unit on the delivery queue.
type FanoutTask struct {
	RecipientID uuid.UUID  `json:"recipient_id"`
	ActorID     uuid.UUID  `json:"actor_id"`
	Kind        string     `json:"kind"`
	Summary     string     `json:"summary"`
	ActivityID  *uuid.UUID `json:"activity_id,omitempty"`
	RoomID      *uuid.UUID `json:"room_id,omitempty"`
}

type FanoutService interface {
	// Enqueue hands a task to the at-least-once redis queue, falling back
	// to synchronous processing when redis is not configured. Delivery
	// outcomes never propagate to the caller.
	Enqueue(ctx context.Context, task FanoutTask) error
	// Process runs the suppression checks and delivery attempts for one
	// task.
	Process(ctx context.Context, task FanoutTask)
	StartWorker(ctx context.Context)
}

type fanoutService struct {
	redisClient *redis.Client
	prefStore   directory.PreferenceStore
	roomRepo    repository.RoomRepository
	push        delivery.Deliverer
	email       delivery.Deliverer

	maxAttempts    int
	attemptTimeout time.Duration
	dedupWindow    time.Duration

	// dedup fallback when redis is absent, keyed like the redis cooldown.
	dedupMu     sync.Mutex
	lastNotifAt map[string]time.Time
}

func NewFanoutService(
	redisClient *redis.Client,
	prefStore directory.PreferenceStore,
	roomRepo repository.RoomRepository,
	push delivery.Deliverer,
	email delivery.Deliverer,
	maxAttempts int,
	attemptTimeout time.Duration,
	dedupWindow time.Duration,
) FanoutService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &fanoutService{
		redisClient:    redisClient,
		prefStore:      prefStore,
		roomRepo:       roomRepo,
		push:           push,
		email:          email,
		maxAttempts:    maxAttempts,
		attemptTimeout: attemptTimeout,
		dedupWindow:    dedupWindow,
		lastNotifAt:    make(map[string]time.Time),
	}
}

// burstSuppressed collapses rapid repeats of the same notification. One
// out-of-band notification per (recipient, category, room) is delivered
// per dedup window; repeats inside the window are dropped. A zero window
// disables deduplication.
func (s *fanoutService) burstSuppressed(ctx context.Context, task FanoutTask, category model.NotificationCategory) bool {
	if s.dedupWindow <= 0 {
		return false
	}

	key := fmt.Sprintf("fanout_dedup:%s:%s", task.RecipientID, category)
	if task.RoomID != nil {
		key = fmt.Sprintf("%s:%s", key, task.RoomID)
	}

	if s.redisClient != nil {
		wasSet, err := s.redisClient.SetNX(ctx, key, "locked", s.dedupWindow).Result()
		if err != nil {
			log.Printf("fanout: dedup check for %s failed: %v", task.RecipientID, err)
			return false
		}
		return !wasSet
	}

	s.dedupMu.Lock()
	defer s.dedupMu.Unlock()
	now := time.Now()
	if last, ok := s.lastNotifAt[key]; ok && now.Sub(last) < s.dedupWindow {
		return true
	}
	s.lastNotifAt[key] = now
	return false
}

// categoryForTaskKind is the single place mapping event kinds to
// preference categories and their delivery channel. Adding an activity
// kind means one new row here.
func categoryForTaskKind(kind string) (category model.NotificationCategory, isPush bool, ok bool) {
	switch kind {
	case TaskKindChatMessage:
		return model.CategoryPushChatMessage, true, true
	case string(model.KindMentionedInChat):
		return model.CategoryChatMention, false, true
	case string(model.KindMentionedInComment):
		return model.CategoryCommentMention, false, true
	case string(model.KindReviewComment):
		return model.CategoryReviewComment, false, true
	case string(model.KindCommentReply):
		return model.CategoryCommentReply, false, true
	case string(model.KindNewFollower):
		return model.CategoryNewFollower, false, true
	case string(model.KindLikedReview),
		string(model.KindMessageReaction),
		string(model.KindFinishedBook),
		string(model.KindWroteReview),
		string(model.KindJoinedRoom):
		return model.CategoryPushActivity, true, true
	}
	return "", false, false
}

func (s *fanoutService) Enqueue(ctx context.Context, task FanoutTask) error {
	if s.redisClient == nil {
		s.Process(ctx, task)
		return nil
	}

	bytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.redisClient.RPush(ctx, FanoutQueueKey, bytes).Err()
}

func (s *fanoutService) StartWorker(ctx context.Context) {
	log.Println("notification fanout worker started")
	for {
		res, err := s.redisClient.BLPop(ctx, 0, FanoutQueueKey).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("redis BLPOP error: %v, retrying in 1s...", err)
			time.Sleep(1 * time.Second)
			continue
		}

		// res[0] is key, res[1] is value
		if len(res) < 2 {
			continue
		}

		var task FanoutTask
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			log.Printf("invalid fanout task json: %v", err)
			continue
		}

		s.Process(ctx, task)
	}
}

func (s *fanoutService) Process(ctx context.Context, task FanoutTask) {
	category, isPush, ok := categoryForTaskKind(task.Kind)
	if !ok {
		log.Printf("fanout: no category for kind %q, dropping", task.Kind)
		return
	}

	prefs, err := s.prefStore.Get(ctx, task.RecipientID)
	if err != nil {
		log.Printf("fanout: preference lookup for %s failed: %v, dropping", task.RecipientID, err)
		return
	}
	if !prefs.Enabled(category) {
		// Suppressed by the recipient's settings, not an error.
		return
	}

	// Room mute suppresses both push and email for room-scoped events.
	// In-app activity recording already happened upstream and is never
	// affected by mute.
	if task.RoomID != nil {
		membership, err := s.roomRepo.FindMembership(ctx, *task.RoomID, task.RecipientID)
		if err != nil {
			log.Printf("fanout: membership lookup for %s failed: %v, dropping", task.RecipientID, err)
			return
		}
		if membership != nil && membership.IsMuted {
			return
		}
	}

	if s.burstSuppressed(ctx, task, category) {
		return
	}

	deliverer := s.email
	if isPush {
		deliverer = s.push
	}
	if deliverer == nil {
		return
	}

	payload := delivery.Payload{
		RecipientID: task.RecipientID,
		ActorID:     task.ActorID,
		Category:    category,
		Summary:     task.Summary,
		ActivityID:  task.ActivityID,
		RoomID:      task.RoomID,
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		err = deliverer.Deliver(attemptCtx, payload)
		cancel()
		if err == nil {
			return
		}
		log.Printf("fanout: delivery attempt %d/%d for %s failed: %v", attempt, s.maxAttempts, task.RecipientID, err)
	}
	// Out of attempts. The in-app record stays; the out-of-band
	// notification is dropped.
	log.Printf("fanout: giving up on %s notification for %s", category, task.RecipientID)
}
