package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherRoutesByKind(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	var got uint
	d.Handle(KindCommentNotification, func(_ context.Context, id uint) error {
		got = id
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), Job{Kind: KindCommentNotification, RecordID: 12}))
	assert.Equal(t, uint(12), got)

	err := d.Dispatch(context.Background(), Job{Kind: KindUnlockMail, RecordID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unlock_mail")
}

func TestDispatcherWrapsHandlerError(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	boom := errors.New("boom")
	d.Handle(KindConfirmationMail, func(context.Context, uint) error { return boom })

	err := d.Dispatch(context.Background(), Job{Kind: KindConfirmationMail, RecordID: 3})
	assert.ErrorIs(t, err, boom)
}

func TestInlineQueueRunsImmediately(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	calls := 0
	d.Handle(KindResetPasswordMail, func(context.Context, uint) error {
		calls++
		return nil
	})

	require.NoError(t, NewInlineQueue(d).Enqueue(context.Background(), Job{Kind: KindResetPasswordMail, RecordID: 1}))
	assert.Equal(t, 1, calls)
}

func TestRedisQueueStoresJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, DefaultQueueKey)
	require.NoError(t, q.Enqueue(context.Background(), Job{Kind: KindCommentNotification, RecordID: 5}))

	items, err := mr.List(DefaultQueueKey)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"kind":"comment_notification","record_id":5}`, items[0])
}

func TestWorkerProcessesQueuedJobsInOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	seen := make(chan uint, 3)
	d := NewDispatcher(zap.NewNop())
	d.Handle(KindCommentNotification, func(_ context.Context, id uint) error {
		seen <- id
		return nil
	})

	q := NewRedisQueue(client, "test:jobs")
	ctx := context.Background()
	for _, id := range []uint{1, 2, 3} {
		require.NoError(t, q.Enqueue(ctx, Job{Kind: KindCommentNotification, RecordID: id}))
	}
	// A malformed entry is skipped without stopping the worker.
	mr.Lpush("test:jobs", "not json")

	w := NewWorker(client, "test:jobs", d, zap.NewNop())
	w.pollTimeout = time.Second

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- w.Run(runCtx) }()

	for _, want := range []uint{1, 2, 3} {
		select {
		case got := <-seen:
			assert.Equal(t, want, got)
		case <-time.After(3 * time.Second):
			t.Fatalf("job %d not processed", want)
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
