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

// Package ratelimit decides whether a caller may make another request.
//
// Two limiters are provided: TokenBucket keeps per-key buckets in process,
// SlidingWindow counts requests in a shared CounterStore so several
// instances enforce one limit.
package ratelimit

import (
	"context"
	"time"
)

type (
	// Key identifies the caller being limited, e.g. a remote IP.
	Key string

	// Decision is the outcome of one Allow call.
	Decision struct {
		Allowed bool
		// RetryAfter is zero when Allowed.
		RetryAfter time.Duration
		// Limit, Remaining and ResetIn describe the window. They are zero
		// for limiters without a fixed window.
		Limit     int64
		Remaining int64
		ResetIn   time.Duration
	}

	Limiter interface {
		Allow(ctx context.Context, key Key) (Decision, error)
	}

	// CounterStore holds expiring counters shared between instances.
	CounterStore interface {
		// Incr increments the counter at key and returns the new value.
		// A new counter lives for at least ttl.
		Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

		// Get returns the current value, or 0 if the counter does not exist.
		Get(ctx context.Context, key string) (int64, error)
	}
)
