// Package realtime pushes small notification payloads to users' live channels.
package realtime

import (
	"context"
	"errors"
	"time"
)

// PushTimeout bounds a single broadcaster's delivery attempt.
const PushTimeout = 2 * time.Second

// Payload is the JSON object delivered to a recipient.
type Payload map[string]any

// Broadcaster delivers a payload to one recipient. Delivery is best-effort.
type Broadcaster interface {
	BroadcastTo(ctx context.Context, recipientID uint, payload Payload) error
}

// Multi fans a payload out to several broadcasters. Every broadcaster is
// tried; failures are joined.
type Multi []Broadcaster

func (m Multi) BroadcastTo(ctx context.Context, recipientID uint, payload Payload) error {
	var errs []error
	for _, b := range m {
		if b == nil {
			continue
		}
		pushCtx, cancel := context.WithTimeout(ctx, PushTimeout)
		err := b.BroadcastTo(pushCtx, recipientID, payload)
		cancel()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every payload.
type Nop struct{}

func (Nop) BroadcastTo(context.Context, uint, Payload) error { return nil }
