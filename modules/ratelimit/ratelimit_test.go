package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// windowStart is aligned to a minute boundary.
var windowStart = time.Unix(1_700_000_040, 0)

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{t: windowStart}
	sw, err := NewSlidingWindow(NewMemoryCounter(clk), 3, time.Minute, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}

	for i, wantRemaining := range []int64{2, 1, 0} {
		d, err := sw.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatal(err)
		}
		if !d.Allowed || d.Remaining != wantRemaining || d.Limit != 3 {
			t.Fatalf("request %d: %+v", i, d)
		}
	}

	d, _ := sw.Allow(ctx, "10.0.0.1")
	if d.Allowed {
		t.Fatal("4th request in window allowed")
	}
	if d.RetryAfter != time.Minute {
		t.Errorf("RetryAfter = %s, want 1m", d.RetryAfter)
	}

	if d, _ := sw.Allow(ctx, "10.0.0.2"); !d.Allowed {
		t.Error("other key was limited")
	}

	// 30s into the next window: 4 previous requests weigh half.
	clk.Advance(90 * time.Second)
	d, _ = sw.Allow(ctx, "10.0.0.1")
	if !d.Allowed {
		t.Fatalf("request after window slide refused: %+v", d)
	}
	d, _ = sw.Allow(ctx, "10.0.0.1")
	if d.Allowed {
		t.Fatalf("request over weighted limit allowed: %+v", d)
	}
	if d.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %s, want 30s", d.RetryAfter)
	}
}

type brokenCounter struct{}

func (brokenCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func (brokenCounter) Get(context.Context, string) (int64, error) { return 0, nil }

func TestSlidingWindowStoreError(t *testing.T) {
	sw, err := NewSlidingWindow(brokenCounter{}, 1, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sw.Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected error from counter store")
	}
}

func TestNewSlidingWindowRejectsBadConfig(t *testing.T) {
	if _, err := NewSlidingWindow(nil, 1, time.Second); err == nil {
		t.Error("nil counter accepted")
	}
	if _, err := NewSlidingWindow(NewMemoryCounter(nil), 0, time.Second); err == nil {
		t.Error("zero limit accepted")
	}
	if _, err := NewSlidingWindow(NewMemoryCounter(nil), 1, 0); err == nil {
		t.Error("zero window accepted")
	}
}

func TestUint128CeilDiv(t *testing.T) {
	tests := []struct {
		u    uint128
		d    uint64
		want uint64
	}{
		{uint128{0, 0}, 10, 0},
		{uint128{0, 10}, 10, 1},
		{uint128{0, 11}, 10, 2},
		{uint128{1, 0}, 1 << 63, 2},
		{uint128{5, 0}, 5, ^uint64(0)},
	}
	for _, tt := range tests {
		if got := tt.u.ceilDiv(tt.d); got != tt.want {
			t.Errorf("%+v.ceilDiv(%d) = %d, want %d", tt.u, tt.d, got, tt.want)
		}
	}
}

func TestMemoryCounterExpires(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{t: windowStart}
	c := NewMemoryCounter(clk)

	c.Incr(ctx, "k", time.Second)
	if n, _ := c.Incr(ctx, "k", time.Second); n != 2 {
		t.Fatalf("Incr = %d, want 2", n)
	}

	clk.Advance(time.Second)
	if n, _ := c.Get(ctx, "k"); n != 0 {
		t.Errorf("Get after expiry = %d, want 0", n)
	}
	if n, _ := c.Incr(ctx, "k", time.Second); n != 1 {
		t.Errorf("Incr after expiry = %d, want 1", n)
	}
}

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{t: windowStart}
	tb := NewTokenBucket(1, 2, time.Minute, clk)

	for i := 0; i < 2; i++ {
		if d, _ := tb.Allow(ctx, "a"); !d.Allowed {
			t.Fatalf("request %d refused", i)
		}
	}
	d, _ := tb.Allow(ctx, "a")
	if d.Allowed || d.RetryAfter != time.Second {
		t.Fatalf("over burst: %+v", d)
	}

	clk.Advance(time.Second)
	if d, _ := tb.Allow(ctx, "a"); !d.Allowed {
		t.Error("refill did not allow a request")
	}
}

func TestTokenBucketEvictsIdle(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{t: windowStart}
	tb := NewTokenBucket(1, 1, time.Minute, clk)

	tb.Allow(ctx, "a")
	tb.Allow(ctx, "b")
	if n := tb.Len(); n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}

	clk.Advance(2 * time.Minute)
	tb.Allow(ctx, "c")
	if n := tb.Len(); n != 1 {
		t.Errorf("Len after sweep = %d, want 1", n)
	}
}
