package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether an inbound request from key may proceed now.
type Limiter interface {
	// Allow checks if a request from the given key should be allowed.
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// TokenBucketLimiter keeps one token bucket per key. Buckets that have not
// been used for idleTTL are dropped during the next sweep.
type TokenBucketLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTokenBucketLimiter creates a keyed limiter refilling rps tokens per second up to burst.
func NewTokenBucketLimiter(rps float64, burst int, idleTTL time.Duration) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		buckets:   make(map[string]*bucket),
		rps:       rate.Limit(rps),
		burst:     burst,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
	}
}

func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}

	b.lastSeen = now

	return b.limiter.AllowN(now, 1), nil
}

// Len returns the number of tracked keys.
func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.buckets)
}

func (l *TokenBucketLimiter) sweep(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastSweep) < l.idleTTL {
		return
	}

	cutoff := now.Add(-l.idleTTL)

	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}

	l.lastSweep = now
}
