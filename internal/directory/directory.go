// Package directory holds the read-only collaborator interfaces this core
// consumes: the user/identity directory, the book catalog and the
// notification-preferences store. The default implementations read the
// shared database; a deployment may swap in remote-service clients without
// touching the services that consume them.
package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/repository"
)

// UserDirectory resolves mention handles and block relationships.
type UserDirectory interface {
	// ResolveHandle maps a handle to its user. Returns nil without error
	// when the handle does not resolve; a typo is not a fault.
	ResolveHandle(ctx context.Context, handle string) (*model.User, error)
	// Blocked reports whether a block exists between the two users in
	// either direction.
	Blocked(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// BookCatalog validates book references when a room is first created.
type BookCatalog interface {
	Exists(ctx context.Context, bookID uuid.UUID) (bool, error)
}

// PreferenceStore reads a user's notification toggles. The settings
// service owns writes.
type PreferenceStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error)
}

type userDirectory struct {
	users repository.UserRepository
}

func NewUserDirectory(users repository.UserRepository) UserDirectory {
	return &userDirectory{users: users}
}

func (d *userDirectory) ResolveHandle(ctx context.Context, handle string) (*model.User, error) {
	return d.users.FindByUsername(ctx, handle)
}

func (d *userDirectory) Blocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return d.users.BlockedEither(ctx, a, b)
}

type bookCatalog struct {
	books repository.BookRepository
}

func NewBookCatalog(books repository.BookRepository) BookCatalog {
	return &bookCatalog{books: books}
}

func (c *bookCatalog) Exists(ctx context.Context, bookID uuid.UUID) (bool, error) {
	return c.books.Exists(ctx, bookID)
}

type preferenceStore struct {
	prefs repository.PreferenceRepository
}

func NewPreferenceStore(prefs repository.PreferenceRepository) PreferenceStore {
	return &preferenceStore{prefs: prefs}
}

func (s *preferenceStore) Get(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	return s.prefs.GetByUserID(ctx, userID)
}
