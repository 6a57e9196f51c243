package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var handled atomic.Int32
	q := NewQueue("test", func(context.Context, Job) error {
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "audit"}))
	}
	q.Stop(context.Background())
	require.Equal(t, int32(5), handled.Load())
}

func TestQueueRetriesThenReportsFailure(t *testing.T) {
	var attempts atomic.Int32
	var mu sync.Mutex
	var outcome error

	q := NewQueue("retry", func(context.Context, Job) error {
		attempts.Add(1)
		return errors.New("db down")
	}, QueueConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond, Observer: func(_ Job, err error) {
		mu.Lock()
		outcome = err
		mu.Unlock()
	}})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "a"}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Stop(ctx)

	require.Equal(t, int32(3), attempts.Load())
	mu.Lock()
	defer mu.Unlock()
	require.EqualError(t, outcome, "db down")
}

func TestQueueRejectsAfterStop(t *testing.T) {
	q := NewQueue("closed", func(context.Context, Job) error { return nil }, QueueConfig{})
	require.Error(t, q.Enqueue(Job{}))

	q.Start(context.Background())
	q.Stop(context.Background())
	require.ErrorIs(t, q.Enqueue(Job{}), ErrQueueClosed)
}

func TestQueueStopHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("slow", func(ctx context.Context, _ Job) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "slow"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		q.Stop(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		close(release)
		t.Fatal("stop did not return after deadline")
	}
}
