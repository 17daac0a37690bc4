package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/bhasha-api/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock only moves when Advance is called.
type fakeClock struct {
	mu        sync.Mutex
	now       time.Time
	waiters   []fakeWaiter
	requested []time.Duration
}

type fakeWaiter struct {
	deadline time.Time
	ch       chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requested = append(c.requested, d)
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, fakeWaiter{deadline: c.now.Add(d), ch: ch})
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.deadline.After(c.now) {
			w.ch <- c.now
			continue
		}
		remaining = append(remaining, w)
	}
	c.waiters = remaining
}

func (c *fakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

func (c *fakeClock) Requested() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.requested...)
}

// blockUntilWaiting waits for n goroutines to be parked on After.
func (c *fakeClock) blockUntilWaiting(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return c.Waiters() >= n }, 2*time.Second, time.Millisecond)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	w := ratelimit.New(ratelimit.Config{})
	stats := w.Stats()

	assert.Equal(t, ratelimit.DefaultLimit, stats.Limit)
	assert.Equal(t, ratelimit.DefaultWindow, stats.Window)
	assert.Zero(t, stats.InWindow)
}

func TestAcquire_FiftyWithinWindowNeverWait(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	w := ratelimit.New(ratelimit.Config{}, ratelimit.WithClock(clock))

	for i := 0; i < 50; i++ {
		require.NoError(t, w.Acquire(context.Background()))
		clock.Advance(time.Second / 2)
	}

	assert.Zero(t, clock.Waiters(), "no acquire should have waited")
	assert.Equal(t, 50, w.Stats().InWindow)
}

func TestAcquire_FiftyFirstWaitsForOldestToExpire(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	start := clock.Now()
	w := ratelimit.New(ratelimit.Config{}, ratelimit.WithClock(clock))

	for i := 0; i < 50; i++ {
		require.NoError(t, w.Acquire(context.Background()))
	}

	var acquiredAt time.Time
	done := make(chan error, 1)
	go func() {
		err := w.Acquire(context.Background())
		acquiredAt = clock.Now()
		done <- err
	}()

	// Step through the poll intervals until just before the window expires.
	for clock.Now().Sub(start) < 59*time.Second {
		clock.blockUntilWaiting(t, 1)
		select {
		case <-done:
			t.Fatalf("51st acquire returned early after %s", clock.Now().Sub(start))
		default:
		}
		clock.Advance(time.Second)
	}

	clock.blockUntilWaiting(t, 1)
	clock.Advance(time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("51st acquire did not complete after the window expired")
	}

	assert.GreaterOrEqual(t, acquiredAt.Sub(start), 60*time.Second)
	assert.Equal(t, 1, w.Stats().InWindow, "the first 50 stamps should have been evicted")
}

func TestAcquire_WaitNeverExceedsPollInterval(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	w := ratelimit.New(ratelimit.Config{Limit: 1, Window: time.Minute, PollInterval: 250 * time.Millisecond},
		ratelimit.WithClock(clock))

	require.NoError(t, w.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Acquire(ctx) }()

	clock.blockUntilWaiting(t, 1)
	clock.Advance(250 * time.Millisecond)
	// A fresh wait is registered after each poll.
	clock.blockUntilWaiting(t, 1)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, ratelimit.ErrWaitCancelled)

	requested := clock.Requested()
	require.NotEmpty(t, requested)
	for _, d := range requested {
		assert.Equal(t, 250*time.Millisecond, d)
	}
}

func TestAcquire_CancelDoesNotReserveSlot(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	w := ratelimit.New(ratelimit.Config{Limit: 2, Window: time.Minute}, ratelimit.WithClock(clock))

	require.NoError(t, w.Acquire(context.Background()))
	require.NoError(t, w.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Acquire(ctx) }()

	clock.blockUntilWaiting(t, 1)
	cancel()

	err := <-done
	require.ErrorIs(t, err, ratelimit.ErrWaitCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, w.Stats().InWindow)

	clock.Advance(time.Minute)
	assert.Zero(t, w.Stats().InWindow)
	require.NoError(t, w.Acquire(context.Background()))
	assert.Equal(t, 1, w.Stats().InWindow)
}

func TestAcquire_CancelledContextFailsFast(t *testing.T) {
	t.Parallel()

	w := ratelimit.New(ratelimit.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Acquire(ctx)
	assert.ErrorIs(t, err, ratelimit.ErrWaitCancelled)
	assert.Zero(t, w.Stats().InWindow)
}

func TestAcquire_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	w := ratelimit.New(ratelimit.Config{Limit: 10, Window: time.Minute}, ratelimit.WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan error, 25)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- w.Acquire(ctx)
		}()
	}

	clock.blockUntilWaiting(t, 15)
	assert.Equal(t, 10, w.Stats().InWindow)

	cancel()
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 10, succeeded)
}
