// Package delivery is the boundary to the out-of-band notification
// collaborators. The fan-out pipeline hands a rendered payload to a
// Deliverer and treats any error as retryable up to its attempt bound.
package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/model"
)

// Payload is the rendered notification handed to a channel.
type Payload struct {
	RecipientID uuid.UUID                  `json:"recipient_id"`
	ActorID     uuid.UUID                  `json:"actor_id"`
	Category    model.NotificationCategory `json:"category"`
	Summary     string                     `json:"summary"`
	ActivityID  *uuid.UUID                 `json:"activity_id,omitempty"`
	RoomID      *uuid.UUID                 `json:"room_id,omitempty"`
}

type Deliverer interface {
	Deliver(ctx context.Context, payload Payload) error
}
