package ratelimit

import (
	"context"
	"sync"
	"time"

	"taskboard/modules/clock"

	"golang.org/x/time/rate"
)

var _ Limiter = (*TokenBucket)(nil)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucket keeps one golang.org/x/time/rate limiter per key. Buckets idle
// for longer than idleTTL are dropped.
type TokenBucket struct {
	mu        sync.Mutex
	buckets   map[Key]*bucket
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	clock     clock.Clock
}

func NewTokenBucket(rps float64, burst int, idleTTL time.Duration, c clock.Clock) *TokenBucket {
	if c == nil {
		c = clock.RealClockProvider()
	}
	return &TokenBucket{
		buckets:   make(map[Key]*bucket),
		limit:     rate.Limit(rps),
		burst:     burst,
		idleTTL:   idleTTL,
		lastSweep: c.Now(),
		clock:     c,
	}
}

// Allow takes a token for key. A refused call does not consume one.
func (t *TokenBucket) Allow(_ context.Context, key Key) (Decision, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	t.sweepLocked(now)

	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return Decision{Allowed: true}, nil
	}

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Decision{RetryAfter: time.Second}, nil
	}
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return Decision{RetryAfter: wait}, nil
}

func (t *TokenBucket) sweepLocked(now time.Time) {
	if t.idleTTL <= 0 || now.Sub(t.lastSweep) < t.idleTTL {
		return
	}
	for k, b := range t.buckets {
		if now.Sub(b.lastSeen) > t.idleTTL {
			delete(t.buckets, k)
		}
	}
	t.lastSweep = now
}

// Len reports the number of live buckets.
func (t *TokenBucket) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}
