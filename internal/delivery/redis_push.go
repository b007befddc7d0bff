package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPushDeliverer publishes push notifications to a per-user redis
// channel. The websocket stream handler subscribes to the same channel, so
// connected clients receive pushes live; the mobile push bridge consumes it
// out-of-process.
type RedisPushDeliverer struct {
	redisClient *redis.Client
}

func NewRedisPushDeliverer(redisClient *redis.Client) *RedisPushDeliverer {
	return &RedisPushDeliverer{redisClient: redisClient}
}

// PushChannel is the pub/sub channel carrying a user's push payloads.
func PushChannel(userID string) string {
	return fmt.Sprintf("user_activity:%s", userID)
}

func (d *RedisPushDeliverer) Deliver(ctx context.Context, payload Payload) error {
	if d.redisClient == nil {
		return fmt.Errorf("redis client is not configured")
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return d.redisClient.Publish(ctx, PushChannel(payload.RecipientID.String()), bytes).Err()
}
