package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrInvalidConfig is returned when a gate is built with a non-positive limit or window.
	ErrInvalidConfig = errors.New("ratelimit: invalid gate configuration")
	// ErrCancelled is returned when a caller's wait ends before a permit was granted.
	ErrCancelled = errors.New("ratelimit: wait cancelled")
)

// Window describes the accounting period a gate is currently counting in.
type Window struct {
	Start time.Time
	Size  time.Duration
	Count int
	Limit int
}

// Gate admits at most limit callers per window. Windows are aligned to
// multiples of the window size since the Unix epoch, so a one second gate
// resets at the top of every second regardless of when it was created.
//
// Callers over the limit block in Acquire until the window rolls over or
// their context is done. Waiters are not served in arrival order.
type Gate struct {
	clock      Clock
	windowSize int64 // milliseconds
	limit      int

	mu          sync.Mutex
	windowStart int64
	count       int
	// rolled is closed and replaced on every rollover to wake waiters.
	rolled chan struct{}
}

// NewGate creates a gate allowing requestLimit permits per unit.
func NewGate(unit time.Duration, requestLimit int) (*Gate, error) {
	return NewGateWithClock(unit, requestLimit, SystemClock())
}

// NewGateWithClock creates a gate that reads time from clock.
// Use this constructor for testing with a manual clock.
func NewGateWithClock(unit time.Duration, requestLimit int, clock Clock) (*Gate, error) {
	if requestLimit <= 0 {
		return nil, fmt.Errorf("%w: request limit must be positive, got %d", ErrInvalidConfig, requestLimit)
	}

	size := unit.Milliseconds()
	if size <= 0 {
		return nil, fmt.Errorf("%w: window must be at least 1ms, got %s", ErrInvalidConfig, unit)
	}

	return &Gate{
		clock:       clock,
		windowSize:  size,
		limit:       requestLimit,
		windowStart: align(clock.Now().UnixMilli(), size),
		rolled:      make(chan struct{}),
	}, nil
}

// Acquire blocks until a permit is available in the current window and
// consumes it. If ctx is done first, Acquire returns an error wrapping both
// ErrCancelled and ctx.Err(), and no permit is consumed.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	g.mu.Lock()

	for {
		now := g.clock.Now().UnixMilli()
		g.rollover(now)

		if g.count < g.limit {
			g.count++
			g.mu.Unlock()

			return nil
		}

		remaining := time.Duration(g.windowStart+g.windowSize-now) * time.Millisecond
		rolled := g.rolled

		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return cancelled(ctx.Err())
		case <-g.clock.After(remaining):
		case <-rolled:
		}

		g.mu.Lock()
	}
}

// rollover starts a new window when now has passed the end of the current one.
// Must be called with g.mu held.
func (g *Gate) rollover(now int64) {
	if now < g.windowStart+g.windowSize {
		return
	}

	g.windowStart = align(now, g.windowSize)
	g.count = 0

	close(g.rolled)
	g.rolled = make(chan struct{})
}

// Snapshot returns the state of the window as last observed by a caller.
func (g *Gate) Snapshot() Window {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Window{
		Start: time.UnixMilli(g.windowStart),
		Size:  g.WindowSize(),
		Count: g.count,
		Limit: g.limit,
	}
}

// Limit returns the number of permits granted per window.
func (g *Gate) Limit() int {
	return g.limit
}

// WindowSize returns the duration of one window.
func (g *Gate) WindowSize() time.Duration {
	return time.Duration(g.windowSize) * time.Millisecond
}

func align(now, size int64) int64 {
	return (now / size) * size
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}
