package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Room / membership preconditions
	ErrRoomNotFound = errors.New("room not found")
	ErrBookNotFound = errors.New("book not found")
	ErrNotMember    = errors.New("not a member of this room")

	// Message preconditions
	ErrMessageNotFound   = errors.New("message not found")
	ErrMessageTooLong    = errors.New("message exceeds maximum length")
	ErrInvalidParent     = errors.New("invalid parent message")
	ErrNotOwner          = errors.New("not the author of this message")
	ErrEditWindowExpired = errors.New("edit window has expired")

	// Reaction / activity preconditions
	ErrInvalidReactionKind = errors.New("invalid reaction kind")
	ErrNotRecipient        = errors.New("not the recipient of this activity")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrBookNotFound),
		errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotMember),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrNotRecipient):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrMessageTooLong),
		errors.Is(err, ErrInvalidParent),
		errors.Is(err, ErrInvalidReactionKind):
		return http.StatusBadRequest
	case errors.Is(err, ErrEditWindowExpired):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
