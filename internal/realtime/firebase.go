package realtime

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// MessageSender is the part of *messaging.Client used for push.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TopicFor is the FCM topic a user's devices subscribe to.
func TopicFor(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// FirebaseBroadcaster sends payloads as FCM data messages.
type FirebaseBroadcaster struct {
	sender MessageSender
}

// NewFirebaseBroadcaster creates a FirebaseBroadcaster
func NewFirebaseBroadcaster(sender MessageSender) *FirebaseBroadcaster {
	return &FirebaseBroadcaster{sender: sender}
}

// BroadcastTo sends payload to the recipient's topic. FCM data values are
// strings, so every value is formatted.
func (b *FirebaseBroadcaster) BroadcastTo(ctx context.Context, recipientID uint, payload Payload) error {
	data := make(map[string]string, len(payload))
	for k, v := range payload {
		data[k] = fmt.Sprint(v)
	}
	_, err := b.sender.Send(ctx, &messaging.Message{
		Topic: TopicFor(recipientID),
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("fcm send to user %d: %w", recipientID, err)
	}
	return nil
}
