package goal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRecomputer fails the first failures calls, then succeeds.
type countingRecomputer struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (c *countingRecomputer) Recompute(ctx context.Context, goalID, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls <= c.failures {
		return errors.New("github unavailable")
	}
	return nil
}

func (c *countingRecomputer) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestWorker(service Recomputer) *Worker {
	w := NewWorker(service)
	w.delay = func(int) time.Duration { return 0 }
	return w
}

func TestWorkerProcessesJob(t *testing.T) {
	recomputer := &countingRecomputer{}
	w := newTestWorker(recomputer)
	w.Start()
	defer w.Stop()

	require.True(t, w.Enqueue(uuid.New(), uuid.New()))
	require.Eventually(t, func() bool {
		return recomputer.callCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestWorkerRetriesUntilSuccess(t *testing.T) {
	recomputer := &countingRecomputer{failures: 2}
	w := newTestWorker(recomputer)
	w.Start()
	defer w.Stop()

	require.True(t, w.Enqueue(uuid.New(), uuid.New()))
	require.Eventually(t, func() bool {
		return recomputer.callCount() == 3
	}, time.Second, 5*time.Millisecond)
}

func TestWorkerGivesUpAfterMaxAttempts(t *testing.T) {
	recomputer := &countingRecomputer{failures: 100}
	w := newTestWorker(recomputer)
	w.Start()

	require.True(t, w.Enqueue(uuid.New(), uuid.New()))
	require.Eventually(t, func() bool {
		return recomputer.callCount() == maxAttempts
	}, time.Second, 5*time.Millisecond)

	// No further attempts after giving up.
	time.Sleep(50 * time.Millisecond)
	w.Stop()
	assert.Equal(t, maxAttempts, recomputer.callCount())
}

func TestWorkerEnqueueFullQueue(t *testing.T) {
	// Never started, so the buffer fills up and Enqueue reports false
	// instead of blocking.
	w := newTestWorker(&countingRecomputer{})
	for i := 0; i < queueSize; i++ {
		require.True(t, w.Enqueue(uuid.New(), uuid.New()))
	}
	assert.False(t, w.Enqueue(uuid.New(), uuid.New()))
}
