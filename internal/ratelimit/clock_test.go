package ratelimit_test

import (
	"sync"
	"time"
)

// manualClock only moves when the test says so.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []manualWaiter
}

type manualWaiter struct {
	deadline time.Time
	ch       chan time.Time
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *manualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	deadline := c.now.Add(d)

	if !deadline.After(c.now) {
		ch <- c.now

		return ch
	}

	c.waiters = append(c.waiters, manualWaiter{deadline: deadline, ch: ch})

	return ch
}

// Advance moves time forward and fires every timer that is now due.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)

	pending := c.waiters[:0]

	for _, w := range c.waiters {
		if w.deadline.After(c.now) {
			pending = append(pending, w)

			continue
		}

		w.ch <- c.now
	}

	c.waiters = pending
}

// FireAll fires every pending timer without moving time, like a spurious wake-up.
func (c *manualClock) FireAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, w := range c.waiters {
		w.ch <- c.now
	}

	c.waiters = nil
}

// Skip moves time forward without firing timers, like a late scheduler.
func (c *manualClock) Skip(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// Waiters returns the number of timers that have not fired yet.
func (c *manualClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.waiters)
}
