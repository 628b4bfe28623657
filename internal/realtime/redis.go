package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelFor is the pub/sub channel carrying a user's payloads.
func ChannelFor(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

// RedisBroadcaster publishes payloads on per-user Redis channels and lets the
// websocket endpoint subscribe to them.
type RedisBroadcaster struct {
	client *redis.Client
}

// NewRedisBroadcaster creates a RedisBroadcaster
func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

// BroadcastTo publishes payload as JSON on the recipient's channel.
func (b *RedisBroadcaster) BroadcastTo(ctx context.Context, recipientID uint, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := b.client.Publish(ctx, ChannelFor(recipientID), body).Err(); err != nil {
		return fmt.Errorf("redis publish to user %d: %w", recipientID, err)
	}
	return nil
}

// Subscribe opens a subscription to userID's channel and waits for the
// server to confirm it. The caller closes the returned PubSub.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, userID uint) (*redis.PubSub, error) {
	sub := b.client.Subscribe(ctx, ChannelFor(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe for user %d: %w", userID, err)
	}
	return sub, nil
}
