package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	got []Payload
	err error
}

func (r *recordingBroadcaster) BroadcastTo(ctx context.Context, _ uint, payload Payload) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	r.got = append(r.got, payload)
	return r.err
}

func TestMultiTriesEveryBroadcaster(t *testing.T) {
	failing := &recordingBroadcaster{err: errors.New("down")}
	ok := &recordingBroadcaster{}

	err := Multi{failing, nil, ok}.BroadcastTo(context.Background(), 7, Payload{"type": "like"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Len(t, failing.got, 1)
	assert.Len(t, ok.got, 1)
}

func TestMultiEmptyIsNil(t *testing.T) {
	assert.NoError(t, Multi{}.BroadcastTo(context.Background(), 1, Payload{}))
	assert.NoError(t, Nop{}.BroadcastTo(context.Background(), 1, Payload{}))
}

func TestRedisBroadcasterPublishesToUserChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	b := NewRedisBroadcaster(client)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, 42)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.BroadcastTo(ctx, 42, Payload{"type": "comment", "post_id": 3, "user_id": 9}))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "notifications:42", msg.Channel)
		assert.JSONEq(t, `{"type":"comment","post_id":3,"user_id":9}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisBroadcasterReportsConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisBroadcaster(client).BroadcastTo(context.Background(), 1, Payload{"type": "like"})
	assert.Error(t, err)
}

type fakeSender struct {
	msg *messaging.Message
	err error
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.msg = m
	return "id", f.err
}

func TestFirebaseBroadcasterSendsStringData(t *testing.T) {
	sender := &fakeSender{}
	b := NewFirebaseBroadcaster(sender)

	err := b.BroadcastTo(context.Background(), 5, Payload{"type": "reaction", "post_id": uint(8), "reaction_type": "🔥"})
	require.NoError(t, err)

	require.NotNil(t, sender.msg)
	assert.Equal(t, "user_5", sender.msg.Topic)
	assert.Equal(t, map[string]string{"type": "reaction", "post_id": "8", "reaction_type": "🔥"}, sender.msg.Data)
}

func TestFirebaseBroadcasterWrapsErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("quota")}
	err := NewFirebaseBroadcaster(sender).BroadcastTo(context.Background(), 5, Payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user 5")
}
