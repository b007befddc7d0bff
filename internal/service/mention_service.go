package service

import (
	"context"
	"log"
	"regexp"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/directory"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/repository"
)

// mentionPattern matches @handle tokens. Handles are the username charset;
// anything else terminates the token.
var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]{2,50})`)

// MentionSource identifies the text being scanned and the references its
// mention activities should carry.
type MentionSource struct {
	Type      string // model.MentionSourceMessage or model.MentionSourceComment
	ID        uuid.UUID
	RoomID    *uuid.UUID // set for chat messages
	MessageID *uuid.UUID
	CommentID *uuid.UUID
	ReviewID  *uuid.UUID
}

type MentionService interface {
	// Scan extracts mentions from text and records one mention plus one
	// feed entry per accepted handle. Best-effort: unresolvable handles
	// and blocked pairs are dropped silently, and no failure here ever
	// reaches the caller that accepted the host write.
	Scan(ctx context.Context, authorID uuid.UUID, text string, source MentionSource) []model.Mention
	// ListForUser returns the user's mentions, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Mention, error)
}

type mentionService struct {
	mentionRepo   repository.MentionRepository
	userDirectory directory.UserDirectory
	activities    ActivityService
}

func NewMentionService(mentionRepo repository.MentionRepository, userDirectory directory.UserDirectory, activities ActivityService) MentionService {
	return &mentionService{
		mentionRepo:   mentionRepo,
		userDirectory: userDirectory,
		activities:    activities,
	}
}

// ExtractHandles returns the deduplicated @handles found in text, in order
// of first appearance.
func ExtractHandles(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var handles []string
	for _, match := range matches {
		handle := match[1]
		if seen[handle] {
			continue
		}
		seen[handle] = true
		handles = append(handles, handle)
	}
	return handles
}

func (s *mentionService) Scan(ctx context.Context, authorID uuid.UUID, text string, source MentionSource) []model.Mention {
	var accepted []model.Mention

	for _, handle := range ExtractHandles(text) {
		user, err := s.userDirectory.ResolveHandle(ctx, handle)
		if err != nil {
			log.Printf("mention: resolving %q failed: %v", handle, err)
			continue
		}
		if user == nil || user.ID == authorID {
			// Typos and self-mentions are dropped, not faults.
			continue
		}

		blocked, err := s.userDirectory.Blocked(ctx, authorID, user.ID)
		if err != nil {
			log.Printf("mention: block lookup for %q failed: %v", handle, err)
			continue
		}
		if blocked {
			// Bidirectional and opaque: the sender is never told.
			continue
		}

		mention := &model.Mention{
			SourceType:      source.Type,
			SourceID:        source.ID,
			MentionedUserID: user.ID,
		}
		inserted, err := s.mentionRepo.Create(ctx, mention)
		if err != nil {
			log.Printf("mention: insert for %q failed: %v", handle, err)
			continue
		}
		if !inserted {
			// Already recorded for this source; edits never double-mention.
			continue
		}
		accepted = append(accepted, *mention)

		kind := model.KindMentionedInChat
		if source.Type == model.MentionSourceComment {
			kind = model.KindMentionedInComment
		}
		activity := &model.Activity{
			UserID:  user.ID,
			ActorID: authorID,
			Kind:    kind,
			ActivityTargets: model.ActivityTargets{
				RoomID:    source.RoomID,
				MessageID: source.MessageID,
				CommentID: source.CommentID,
				ReviewID:  source.ReviewID,
			},
		}
		if _, err := s.activities.Record(ctx, activity); err != nil {
			log.Printf("mention: recording activity for %q failed: %v", handle, err)
		}
	}

	return accepted
}

func (s *mentionService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Mention, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.mentionRepo.ListByUser(ctx, userID, limit, offset)
}
