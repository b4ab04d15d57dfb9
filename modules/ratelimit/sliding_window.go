// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"taskboard/modules/clock"
)

var _ Limiter = (*SlidingWindow)(nil)

// SlidingWindow approximates a rolling window with two fixed windows: the
// previous window's count is weighted by how much of it still overlaps the
// rolling window ending now.
type SlidingWindow struct {
	counter CounterStore
	clock   clock.Clock
	prefix  string
	limit   uint64
	window  time.Duration
}

type SlidingWindowOption func(*SlidingWindow)

func WithClock(c clock.Clock) SlidingWindowOption {
	return func(s *SlidingWindow) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithKeyPrefix namespaces counter keys, e.g. per environment.
func WithKeyPrefix(prefix string) SlidingWindowOption {
	return func(s *SlidingWindow) { s.prefix = prefix }
}

func NewSlidingWindow(counter CounterStore, limit int64, window time.Duration, opts ...SlidingWindowOption) (*SlidingWindow, error) {
	if counter == nil {
		return nil, fmt.Errorf("ratelimit: nil counter store")
	}
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("ratelimit: limit and window must be positive, got %d per %s", limit, window)
	}
	s := &SlidingWindow{
		counter: counter,
		clock:   clock.RealClockProvider(),
		prefix:  "rl",
		limit:   uint64(limit),
		window:  window,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Allow counts this request against key and decides on the weighted usage.
// Refused requests are still counted.
func (s *SlidingWindow) Allow(ctx context.Context, key Key) (Decision, error) {
	nowNs := s.clock.Now().UnixNano()
	windowNs := s.window.Nanoseconds()
	idx := nowNs / windowNs

	current, err := s.counter.Incr(ctx, s.counterKey(key, idx), 2*s.window)
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: incr: %w", err)
	}
	previous, err := s.counter.Get(ctx, s.counterKey(key, idx-1))
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: get: %w", err)
	}

	elapsed := min(max(nowNs-idx*windowNs, 0), windowNs)
	resetIn := s.window - time.Duration(elapsed)

	u := weightedUsage(uint64(max(current, 0)), uint64(max(previous, 0)), uint64(elapsed), uint64(windowNs))
	used := u.ceilDiv(uint64(windowNs))

	d := Decision{
		Allowed: u.lessOrEqual(s.limit, uint64(windowNs)),
		Limit:   int64(s.limit),
		ResetIn: resetIn,
	}
	if used < s.limit {
		d.Remaining = int64(s.limit - used)
	}
	if !d.Allowed {
		d.RetryAfter = resetIn
	}
	return d, nil
}

func (s *SlidingWindow) counterKey(key Key, idx int64) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, key, idx)
}

// uint128 holds request-nanoseconds, which overflow 64 bits for large
// windows.
type uint128 struct{ hi, lo uint64 }

// weightedUsage returns current*window + previous*(window-elapsed).
func weightedUsage(current, previous, elapsed, window uint64) uint128 {
	curHi, curLo := bits.Mul64(current, window)
	prevHi, prevLo := bits.Mul64(previous, window-elapsed)
	lo, carry := bits.Add64(curLo, prevLo, 0)
	hi, _ := bits.Add64(curHi, prevHi, carry)
	return uint128{hi: hi, lo: lo}
}

func (u uint128) lessOrEqual(limit, window uint64) bool {
	hi, lo := bits.Mul64(limit, window)
	return u.hi < hi || (u.hi == hi && u.lo <= lo)
}

// ceilDiv returns ceil(u/d), saturating at MaxUint64.
func (u uint128) ceilDiv(d uint64) uint64 {
	if u.hi >= d {
		return ^uint64(0)
	}
	q, r := bits.Div64(u.hi, u.lo, d)
	if r != 0 && q != ^uint64(0) {
		q++
	}
	return q
}
