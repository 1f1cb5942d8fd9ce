package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newQueue(t *testing.T, maxAttempts int) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	q := NewRedisQueue(rdb, maxAttempts)
	q.SetPollTimeout(time.Second)
	return q, mr
}

func TestSubmitAndProcess(t *testing.T) {
	ctx := context.Background()
	q, mr := newQueue(t, 3)

	require.NoError(t, q.Submit(ctx, Thumbnails, ThumbnailJob{UserID: "u", FileID: "f"}))

	var got ThumbnailJob
	took, err := q.ProcessOne(ctx, Thumbnails, func(_ context.Context, payload json.RawMessage) error {
		return json.Unmarshal(payload, &got)
	})
	require.NoError(t, err)
	require.True(t, took)
	require.Equal(t, ThumbnailJob{UserID: "u", FileID: "f"}, got)

	require.False(t, mr.Exists("queue:thumbnails:processing"))
	n, err := q.Len(ctx, Thumbnails)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRetryThenFail(t *testing.T) {
	ctx := context.Background()
	q, _ := newQueue(t, 2)
	require.NoError(t, q.Submit(ctx, Users, UserJob{UserID: "u"}))

	calls := 0
	failing := func(context.Context, json.RawMessage) error {
		calls++
		return errors.New("transient")
	}

	for i := 0; i < 2; i++ {
		took, err := q.ProcessOne(ctx, Users, failing)
		require.NoError(t, err)
		require.True(t, took)
	}
	require.Equal(t, 2, calls)

	n, err := q.Len(ctx, Users)
	require.NoError(t, err)
	require.Zero(t, n)

	failed, err := q.Failed(ctx, Users)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, 2, failed[0].Attempts)
	require.Equal(t, "transient", failed[0].LastError)
}

func TestPermanentErrorSkipsRetries(t *testing.T) {
	ctx := context.Background()
	q, _ := newQueue(t, 5)
	require.NoError(t, q.Submit(ctx, Thumbnails, ThumbnailJob{}))

	took, err := q.ProcessOne(ctx, Thumbnails, func(context.Context, json.RawMessage) error {
		return Permanent(errors.New("bad job"))
	})
	require.NoError(t, err)
	require.True(t, took)

	failed, err := q.Failed(ctx, Thumbnails)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, 1, failed[0].Attempts)
}

func TestRecoverRequeuesStrandedJobs(t *testing.T) {
	ctx := context.Background()
	q, mr := newQueue(t, 3)

	_, err := mr.Lpush("queue:thumbnails:processing", `{"id":"x","attempts":0,"payload":{}}`)
	require.NoError(t, err)

	moved, err := q.Recover(ctx, Thumbnails)
	require.NoError(t, err)
	require.Equal(t, 1, moved)

	n, err := q.Len(ctx, Thumbnails)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestProcessOne_EmptyQueue(t *testing.T) {
	q, _ := newQueue(t, 3)
	took, err := q.ProcessOne(context.Background(), Users, func(context.Context, json.RawMessage) error {
		t.Fatal("handler must not run")
		return nil
	})
	require.NoError(t, err)
	require.False(t, took)
}

func TestConsumeStopsOnCancel(t *testing.T) {
	q, _ := newQueue(t, 3)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- q.Consume(ctx, Users, func(context.Context, json.RawMessage) error { return nil }) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
