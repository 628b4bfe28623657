package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultQueueKey is the Redis list holding pending jobs.
const DefaultQueueKey = "weabotalk:jobs"

// RedisQueue pushes jobs onto a Redis list.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue creates a RedisQueue on key
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", job.Kind, err)
	}
	return nil
}

// Worker pops jobs from a Redis list and dispatches them one at a time.
type Worker struct {
	client      *redis.Client
	key         string
	dispatcher  *Dispatcher
	log         *zap.Logger
	pollTimeout time.Duration
	backoff     time.Duration
}

// NewWorker creates a Worker reading key
func NewWorker(client *redis.Client, key string, d *Dispatcher, log *zap.Logger) *Worker {
	return &Worker{
		client:      client,
		key:         key,
		dispatcher:  d,
		log:         log,
		pollTimeout: 5 * time.Second,
		backoff:     time.Second,
	}
}

// Run processes jobs until ctx is cancelled. Handler failures are logged and
// the job is dropped.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Job worker started", zap.String("queue", w.key))
	defer w.log.Info("Job worker stopped", zap.String("queue", w.key))

	for {
		if ctx.Err() != nil {
			return nil
		}

		res, err := w.client.BRPop(ctx, w.pollTimeout, w.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error("Failed to pop job", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.backoff):
			}
			continue
		}

		// res is [key, value]
		w.process(ctx, res[1])
	}
}

func (w *Worker) process(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.log.Error("Discarding malformed job", zap.String("payload", raw), zap.Error(err))
		return
	}
	start := time.Now()
	if err := w.dispatcher.Dispatch(ctx, job); err != nil {
		w.log.Error("Job failed", zap.String("kind", string(job.Kind)), zap.Uint("record_id", job.RecordID), zap.Error(err))
		return
	}
	w.log.Debug("Job done",
		zap.String("kind", string(job.Kind)),
		zap.Uint("record_id", job.RecordID),
		zap.Duration("took", time.Since(start)))
}
