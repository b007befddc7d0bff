package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/delivery"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/repository"
)

// In-memory repository fakes. They mirror the unique indexes the real
// schema enforces so service-level invariants are testable without a
// database.

type fakeRoomRepo struct {
	mu          sync.Mutex
	rooms       map[uuid.UUID]*model.Room
	memberships map[uuid.UUID]map[uuid.UUID]*model.Membership // roomID -> userID
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:       make(map[uuid.UUID]*model.Room),
		memberships: make(map[uuid.UUID]map[uuid.UUID]*model.Membership),
	}
}

func (f *fakeRoomRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[id], nil
}

func (f *fakeRoomRepo) FindByBookID(ctx context.Context, bookID uuid.UUID) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, room := range f.rooms {
		if room.BookID == bookID {
			return room, nil
		}
	}
	return nil, nil
}

func (f *fakeRoomRepo) Create(ctx context.Context, room *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rooms {
		if existing.BookID == room.BookID {
			return errors.New("duplicate key: rooms_book_id")
		}
	}
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomRepo) RecordMessage(ctx context.Context, roomID uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return errors.New("room not found")
	}
	room.RecordMessage(now)
	return nil
}

func (f *fakeRoomRepo) FindMembership(ctx context.Context, roomID, userID uuid.UUID) (*model.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if members, ok := f.memberships[roomID]; ok {
		return members[userID], nil
	}
	return nil, nil
}

func (f *fakeRoomRepo) CreateMembership(ctx context.Context, membership *model.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members, ok := f.memberships[membership.RoomID]
	if !ok {
		members = make(map[uuid.UUID]*model.Membership)
		f.memberships[membership.RoomID] = members
	}
	if _, exists := members[membership.UserID]; exists {
		return errors.New("duplicate key: idx_membership_room_user")
	}
	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}
	if membership.JoinedAt.IsZero() {
		membership.JoinedAt = time.Now()
	}
	members[membership.UserID] = membership
	return nil
}

func (f *fakeRoomRepo) DeleteMembership(ctx context.Context, roomID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if members, ok := f.memberships[roomID]; ok {
		delete(members, userID)
	}
	return nil
}

func (f *fakeRoomRepo) SaveMembership(ctx context.Context, membership *model.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members, ok := f.memberships[membership.RoomID]
	if !ok {
		members = make(map[uuid.UUID]*model.Membership)
		f.memberships[membership.RoomID] = members
	}
	members[membership.UserID] = membership
	return nil
}

func (f *fakeRoomRepo) ListMemberships(ctx context.Context, roomID uuid.UUID) ([]model.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Membership
	for _, membership := range f.memberships[roomID] {
		result = append(result, *membership)
	}
	return result, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*model.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		message.ID = id
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessageRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, message := range f.messages {
		if message.ID == id {
			return message, nil
		}
	}
	return nil, nil
}

func (f *fakeMessageRepo) Save(ctx context.Context, message *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.messages {
		if existing.ID == message.ID {
			f.messages[i] = message
			return nil
		}
	}
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessageRepo) ListByRoom(ctx context.Context, roomID uuid.UUID, before *model.Message, limit int) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Message
	// messages are appended chronologically; walk backwards for
	// reverse-chronological order.
	for i := len(f.messages) - 1; i >= 0 && len(result) < limit; i-- {
		message := f.messages[i]
		if message.RoomID != roomID {
			continue
		}
		if before != nil && !message.CreatedAt.Before(before.CreatedAt) {
			continue
		}
		result = append(result, *message)
	}
	return result, nil
}

type mentionKey struct {
	sourceType string
	sourceID   uuid.UUID
	userID     uuid.UUID
}

type fakeMentionRepo struct {
	mu       sync.Mutex
	mentions map[mentionKey]*model.Mention
}

func newFakeMentionRepo() *fakeMentionRepo {
	return &fakeMentionRepo{mentions: make(map[mentionKey]*model.Mention)}
}

func (f *fakeMentionRepo) Create(ctx context.Context, mention *model.Mention) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := mentionKey{mention.SourceType, mention.SourceID, mention.MentionedUserID}
	if _, exists := f.mentions[key]; exists {
		return false, nil
	}
	if mention.ID == uuid.Nil {
		mention.ID = uuid.New()
	}
	if mention.CreatedAt.IsZero() {
		mention.CreatedAt = time.Now()
	}
	f.mentions[key] = mention
	return true, nil
}

func (f *fakeMentionRepo) ListBySource(ctx context.Context, sourceType string, sourceID uuid.UUID) ([]model.Mention, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Mention
	for key, mention := range f.mentions {
		if key.sourceType == sourceType && key.sourceID == sourceID {
			result = append(result, *mention)
		}
	}
	return result, nil
}

func (f *fakeMentionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Mention, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Mention
	for key, mention := range f.mentions {
		if key.userID == userID {
			result = append(result, *mention)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeMentionRepo) MarkRead(ctx context.Context, sourceType string, sourceID, userID uuid.UUID, readAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mention, ok := f.mentions[mentionKey{sourceType, sourceID, userID}]
	if ok && !mention.IsRead {
		mention.IsRead = true
		at := readAt
		mention.ReadAt = &at
	}
	return nil
}

func (f *fakeMentionRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, mention := range f.mentions {
		if key.userID == userID && !mention.IsRead {
			mention.IsRead = true
			at := readAt
			mention.ReadAt = &at
		}
	}
	return nil
}

type reactionKey struct {
	messageID uuid.UUID
	userID    uuid.UUID
	kind      model.ReactionKind
}

type fakeReactionRepo struct {
	mu        sync.Mutex
	reactions map[reactionKey]*model.Reaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{reactions: make(map[reactionKey]*model.Reaction)}
}

func (f *fakeReactionRepo) Find(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) (*model.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reactions[reactionKey{messageID, userID, kind}], nil
}

func (f *fakeReactionRepo) Create(ctx context.Context, reaction *model.Reaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := reactionKey{reaction.MessageID, reaction.UserID, reaction.Kind}
	if _, exists := f.reactions[key]; exists {
		return errors.New("duplicate key: idx_reaction_msg_user_kind")
	}
	if reaction.ID == uuid.Nil {
		reaction.ID = uuid.New()
	}
	f.reactions[key] = reaction
	return nil
}

func (f *fakeReactionRepo) Delete(ctx context.Context, messageID, userID uuid.UUID, kind model.ReactionKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reactions, reactionKey{messageID, userID, kind})
	return nil
}

func (f *fakeReactionRepo) CountsByMessage(ctx context.Context, messageID uuid.UUID) (map[model.ReactionKind]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[model.ReactionKind]int64)
	for key := range f.reactions {
		if key.messageID == messageID {
			counts[key.kind]++
		}
	}
	return counts, nil
}

func (f *fakeReactionRepo) KindsByUser(ctx context.Context, messageID, userID uuid.UUID) ([]model.ReactionKind, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kinds []model.ReactionKind
	for key := range f.reactions {
		if key.messageID == messageID && key.userID == userID {
			kinds = append(kinds, key.kind)
		}
	}
	return kinds, nil
}

type fakeActivityRepo struct {
	mu         sync.Mutex
	activities []*model.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (f *fakeActivityRepo) Create(ctx context.Context, activity *model.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if activity.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		activity.ID = id
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	f.activities = append(f.activities, activity)
	return nil
}

func (f *fakeActivityRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, activity := range f.activities {
		if activity.ID == id {
			return activity, nil
		}
	}
	return nil, nil
}

func (f *fakeActivityRepo) MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, activity := range f.activities {
		if activity.ID == id && !activity.IsRead {
			activity.IsRead = true
			at := readAt
			activity.ReadAt = &at
		}
	}
	return nil
}

func (f *fakeActivityRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, activity := range f.activities {
		if activity.UserID == userID && !activity.IsRead {
			activity.IsRead = true
			at := readAt
			activity.ReadAt = &at
		}
	}
	return nil
}

func (f *fakeActivityRepo) ListByRecipient(ctx context.Context, userID uuid.UUID, filter repository.ActivityFilter) ([]model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	var result []model.Activity
	for i := len(f.activities) - 1; i >= 0 && len(result) < limit; i-- {
		activity := f.activities[i]
		if activity.UserID != userID {
			continue
		}
		if filter.UnreadOnly && activity.IsRead {
			continue
		}
		if filter.Before != nil && !activity.CreatedAt.Before(*filter.Before) {
			continue
		}
		if len(filter.Kinds) > 0 {
			match := false
			for _, kind := range filter.Kinds {
				if activity.Kind == kind {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, *activity)
	}
	return result, nil
}

func (f *fakeActivityRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, activity := range f.activities {
		if activity.UserID == userID && !activity.IsRead {
			count++
		}
	}
	return count, nil
}

// Collaborator fakes.

type blockPair struct{ a, b uuid.UUID }

type fakeUserDirectory struct {
	users  map[string]*model.User // by handle
	blocks map[blockPair]bool
}

func newFakeUserDirectory() *fakeUserDirectory {
	return &fakeUserDirectory{
		users:  make(map[string]*model.User),
		blocks: make(map[blockPair]bool),
	}
}

func (f *fakeUserDirectory) addUser(handle string) *model.User {
	user := &model.User{ID: uuid.New(), Username: handle}
	f.users[handle] = user
	return user
}

func (f *fakeUserDirectory) block(blocker, blocked uuid.UUID) {
	f.blocks[blockPair{blocker, blocked}] = true
}

func (f *fakeUserDirectory) ResolveHandle(ctx context.Context, handle string) (*model.User, error) {
	return f.users[handle], nil
}

func (f *fakeUserDirectory) Blocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return f.blocks[blockPair{a, b}] || f.blocks[blockPair{b, a}], nil
}

type fakeBookCatalog struct {
	books map[uuid.UUID]bool
}

func newFakeBookCatalog() *fakeBookCatalog {
	return &fakeBookCatalog{books: make(map[uuid.UUID]bool)}
}

func (f *fakeBookCatalog) Exists(ctx context.Context, bookID uuid.UUID) (bool, error) {
	return f.books[bookID], nil
}

type fakePreferenceStore struct {
	prefs map[uuid.UUID]*model.NotificationPreferences
}

func newFakePreferenceStore() *fakePreferenceStore {
	return &fakePreferenceStore{prefs: make(map[uuid.UUID]*model.NotificationPreferences)}
}

func (f *fakePreferenceStore) Get(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return model.DefaultNotificationPreferences(userID), nil
}

// fakeDeliverer records payloads and can fail a set number of attempts.
type fakeDeliverer struct {
	mu        sync.Mutex
	failTimes int
	attempts  int
	delivered []delivery.Payload
}

func (f *fakeDeliverer) Deliver(ctx context.Context, payload delivery.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failTimes {
		return errors.New("delivery unavailable")
	}
	f.delivered = append(f.delivered, payload)
	return nil
}
