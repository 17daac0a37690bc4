package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Defaults applied when a Config field is zero.
const (
	DefaultLimit        = 50
	DefaultWindow       = 60 * time.Second
	DefaultPollInterval = time.Second
)

// ErrWaitCancelled is returned when the caller's context ends while waiting
// for capacity. No slot is held when it is returned.
var ErrWaitCancelled = errors.New("rate limit wait cancelled")

// Config holds the ceiling and timing of a Window.
type Config struct {
	// Limit is the maximum number of accepted requests inside Window.
	Limit int
	// Window is the length of the trailing interval.
	Window time.Duration
	// PollInterval caps how long a waiting caller sleeps between checks.
	PollInterval time.Duration
}

// Option customises a Window.
type Option func(*Window)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(w *Window) {
		w.clock = clock
	}
}

// WithLogger sets the logger used to report waits.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Window) {
		w.logger = logger
	}
}

// Window is a sliding-window rate limiter. It is safe for concurrent use.
// Waiting callers are not served in any particular order.
type Window struct {
	limit  int
	window time.Duration
	poll   time.Duration
	clock  Clock
	logger *slog.Logger

	mu sync.Mutex
	// stamps holds accepted request times in ascending order.
	stamps []time.Time
}

// Stats is a point-in-time view of the window.
type Stats struct {
	InWindow int           `json:"in_window"`
	Limit    int           `json:"limit"`
	Window   time.Duration `json:"window_ns"`
}

// New builds a Window. Zero or negative Config values fall back to the
// defaults.
func New(cfg Config, opts ...Option) *Window {
	w := &Window{
		limit:  cfg.Limit,
		window: cfg.Window,
		poll:   cfg.PollInterval,
		clock:  systemClock{},
		logger: slog.Default(),
	}
	if w.limit <= 0 {
		w.limit = DefaultLimit
	}
	if w.window <= 0 {
		w.window = DefaultWindow
	}
	if w.poll <= 0 {
		w.poll = DefaultPollInterval
	}

	for _, opt := range opts {
		opt(w)
	}

	w.stamps = make([]time.Time, 0, w.limit)
	return w
}

// Acquire records one request, waiting while the window is full. The wait
// re-checks at least every PollInterval and as soon as the oldest recorded
// request leaves the window. A slot is only recorded once capacity exists,
// so cancelling ctx never leaks a reservation.
func (w *Window) Acquire(ctx context.Context) error {
	waited := false
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrWaitCancelled, err)
		}

		wait, ok := w.tryAcquire()
		if ok {
			if waited {
				w.logger.DebugContext(ctx, "rate limit slot acquired after wait")
			}
			return nil
		}

		if !waited {
			w.logger.InfoContext(ctx, "rate limit reached, waiting for capacity",
				"limit", w.limit,
				"window_seconds", w.window.Seconds(),
				"next_slot_in_ms", wait.Milliseconds())
			waited = true
		}

		if wait > w.poll {
			wait = w.poll
		}

		select {
		case <-ctx.Done():
			w.logger.DebugContext(ctx, "rate limit wait cancelled", "error", ctx.Err())
			return fmt.Errorf("%w: %w", ErrWaitCancelled, ctx.Err())
		case <-w.clock.After(wait):
		}
	}
}

// tryAcquire evicts expired stamps and records now if there is room.
// Otherwise it returns how long until the oldest stamp expires.
func (w *Window) tryAcquire() (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	w.evictLocked(now)

	if len(w.stamps) < w.limit {
		w.stamps = append(w.stamps, now)
		return 0, true
	}

	return w.stamps[0].Add(w.window).Sub(now), false
}

// evictLocked drops stamps that are a full window or more in the past.
func (w *Window) evictLocked(now time.Time) {
	cut := 0
	for cut < len(w.stamps) && now.Sub(w.stamps[cut]) >= w.window {
		cut++
	}
	if cut > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[cut:]...)
	}
}

// Stats reports how many requests are currently inside the window.
func (w *Window) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.evictLocked(w.clock.Now())
	return Stats{InWindow: len(w.stamps), Limit: w.limit, Window: w.window}
}
