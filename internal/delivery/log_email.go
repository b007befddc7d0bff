package delivery

import (
	"context"
	"log"
)

// LogEmailDeliverer stands in for the email service in development: it
// logs the rendered payload instead of sending. Production wires the real
// email collaborator behind the same interface.
type LogEmailDeliverer struct{}

func NewLogEmailDeliverer() *LogEmailDeliverer {
	return &LogEmailDeliverer{}
}

func (d *LogEmailDeliverer) Deliver(ctx context.Context, payload Payload) error {
	log.Printf("[email] to=%s category=%s summary=%q", payload.RecipientID, payload.Category, payload.Summary)
	return nil
}
