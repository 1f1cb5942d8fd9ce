// Package queue is a small at-least-once job queue on Redis lists.
//
// Submit pushes a JSON envelope onto queue:<name>. Consumers move one envelope
// at a time onto queue:<name>:processing with BRPOPLPUSH, run the handler, and
// then either drop it (success), push it back with attempts+1 (retryable
// failure) or park it on queue:<name>:failed.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"filesmanager/backend/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	Thumbnails = "thumbnails"
	Users      = "users"
)

// ThumbnailJob asks the worker to build derivatives for an image record.
type ThumbnailJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// UserJob is emitted once per registered user.
type UserJob struct {
	UserID string `json:"userId"`
}

// JobSubmitter is what request handlers depend on to hand work to the worker.
type JobSubmitter interface {
	Submit(ctx context.Context, queue string, payload any) error
}

type Envelope struct {
	ID        string          `json:"id"`
	Attempts  int             `json:"attempts"`
	Payload   json.RawMessage `json:"payload"`
	LastError string          `json:"lastError,omitempty"`
}

// Handler processes one payload. Returning an error wrapped with Permanent
// skips the remaining attempts.
type Handler func(ctx context.Context, payload json.RawMessage) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type RedisQueue struct {
	rdb         redis.UniversalClient
	maxAttempts int
	pollTimeout time.Duration
}

func NewRedisQueue(rdb redis.UniversalClient, maxAttempts int) *RedisQueue {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RedisQueue{rdb: rdb, maxAttempts: maxAttempts, pollTimeout: 5 * time.Second}
}

// SetPollTimeout bounds how long ProcessOne blocks on an empty queue.
func (q *RedisQueue) SetPollTimeout(d time.Duration) {
	q.pollTimeout = d
}

func pendingKey(name string) string    { return "queue:" + name }
func processingKey(name string) string { return "queue:" + name + ":processing" }
func failedKey(name string) string     { return "queue:" + name + ":failed" }

func (q *RedisQueue) Submit(ctx context.Context, name string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s job: %w", name, err)
	}
	raw, err := json.Marshal(Envelope{ID: uuid.NewString(), Payload: body})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", name, err)
	}
	if err := q.rdb.LPush(ctx, pendingKey(name), raw).Err(); err != nil {
		return fmt.Errorf("enqueue %s job: %w", name, err)
	}
	return nil
}

// Recover moves envelopes left in the processing list by a crashed consumer
// back to pending. Call it before starting consumers. It assumes a single
// worker process per queue: jobs another live process is still handling are
// requeued too and run a second time.
func (q *RedisQueue) Recover(ctx context.Context, name string) (int, error) {
	moved := 0
	for {
		err := q.rdb.RPopLPush(ctx, processingKey(name), pendingKey(name)).Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("recover %s jobs: %w", name, err)
		}
		moved++
	}
}

// Consume runs h on jobs from name until ctx is done.
func (q *RedisQueue) Consume(ctx context.Context, name string, h Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := q.ProcessOne(ctx, name, h); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("queue consume failed", "queue", name, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne waits up to the poll timeout for a job and handles it. It reports
// whether a job was taken. Handler failures are recorded on the envelope and
// are not returned.
func (q *RedisQueue) ProcessOne(ctx context.Context, name string, h Handler) (bool, error) {
	raw, err := q.rdb.BRPopLPush(ctx, pendingKey(name), processingKey(name), q.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dequeue %s job: %w", name, err)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		quoted, _ := json.Marshal(raw)
		env = Envelope{ID: "malformed", Payload: quoted}
		return true, q.settle(ctx, name, raw, env, Permanent(fmt.Errorf("decode envelope: %w", err)))
	}

	env.Attempts++
	herr := h(ctx, env.Payload)
	return true, q.settle(ctx, name, raw, env, herr)
}

func (q *RedisQueue) settle(ctx context.Context, name, raw string, env Envelope, herr error) error {
	log := logger.With("queue", name, "job_id", env.ID, "attempt", env.Attempts)

	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, processingKey(name), 1, raw)
		if herr == nil {
			return nil
		}

		env.LastError = herr.Error()
		next, merr := json.Marshal(env)
		if merr != nil {
			return merr
		}
		if IsPermanent(herr) || env.Attempts >= q.maxAttempts {
			pipe.LPush(ctx, failedKey(name), next)
		} else {
			pipe.LPush(ctx, pendingKey(name), next)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("settle %s job %s: %w", name, env.ID, err)
	}

	switch {
	case herr == nil:
		log.Debug("job completed")
	case IsPermanent(herr) || env.Attempts >= q.maxAttempts:
		log.Error("job failed", "error", herr)
	default:
		log.Warn("job failed, will retry", "error", herr)
	}
	return nil
}

// Failed returns the envelopes parked on the failed list, newest first.
func (q *RedisQueue) Failed(ctx context.Context, name string) ([]Envelope, error) {
	raws, err := q.rdb.LRange(ctx, failedKey(name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list failed %s jobs: %w", name, err)
	}
	out := make([]Envelope, 0, len(raws))
	for _, raw := range raws {
		var env Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

// Len returns the number of pending jobs.
func (q *RedisQueue) Len(ctx context.Context, name string) (int64, error) {
	return q.rdb.LLen(ctx, pendingKey(name)).Result()
}
