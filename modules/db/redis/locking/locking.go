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

// Package locking provides per-key mutual exclusion across service replicas
// on top of github.com/redis/rueidis/rueidislock.
package locking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/rueidis/rueidislock"
)

// ErrLockNotAcquired is returned in try-once mode when the lock is already
// held by another caller.
var ErrLockNotAcquired = errors.New("locking: lock not acquired")

// ErrAcquireTimeout is returned when a blocking acquisition exceeds the
// configured acquire timeout.
var ErrAcquireTimeout = errors.New("locking: acquire timeout")

// clock is a pluggable time source for testability.
type clock func() time.Time

func defaultClock() time.Time { return time.Now() }

// KeyedLocker runs work while holding a named distributed lock.
//
// Lock names are namePrefix + key. The rueidislock key validity and extension
// loop keep the lock alive while fn runs; if redis loses the lock the context
// passed to fn is canceled.
type KeyedLocker struct {
	locker rueidislock.Locker
	logger *slog.Logger

	// if true, WithLock blocks waiting for the lock (locker.WithContext).
	// if false, a single TryWithContext is made and ErrLockNotAcquired is
	// returned when the lock is held elsewhere.
	waitForLock bool

	// bounds lock acquisition when waitForLock is set; zero means ctx only.
	acquireTimeout time.Duration

	// deadline applied to fn once the lock is held; zero means none.
	holdAtMostFor time.Duration

	namePrefix string

	now clock
}

// Option configures a KeyedLocker.
type Option func(*KeyedLocker)

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(k *KeyedLocker) {
		k.logger = l
	}
}

// WithWaitForLock toggles blocking acquisition (true, the default) versus
// try-once semantics (false).
func WithWaitForLock(wait bool) Option {
	return func(k *KeyedLocker) {
		k.waitForLock = wait
	}
}

// WithAcquireTimeout sets a max duration to wait for acquiring the lock.
func WithAcquireTimeout(d time.Duration) Option {
	return func(k *KeyedLocker) {
		k.acquireTimeout = d
	}
}

// WithHoldAtMostFor bounds how long fn may run while holding the lock.
func WithHoldAtMostFor(d time.Duration) Option {
	return func(k *KeyedLocker) {
		k.holdAtMostFor = d
	}
}

// WithNamePrefix adds a prefix to all lock names.
// Example: WithNamePrefix("profile:") + key "42" => "profile:42".
func WithNamePrefix(prefix string) Option {
	return func(k *KeyedLocker) {
		k.namePrefix = prefix
	}
}

// WithClock overrides the time source (useful in tests).
func WithClock(fn clock) Option {
	return func(k *KeyedLocker) {
		if fn != nil {
			k.now = fn
		}
	}
}

// NewKeyedLocker constructs a KeyedLocker from a rueidislock.Locker.
// The same Locker can be shared by several KeyedLockers with different prefixes.
func NewKeyedLocker(locker rueidislock.Locker, opts ...Option) *KeyedLocker {
	k := &KeyedLocker{
		locker:      locker,
		waitForLock: true,
		now:         defaultClock,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(k)
		}
	}
	return k
}

// WithLock acquires the lock for key, runs fn under it and releases it.
// The lock is released even when fn returns an error.
func (k *KeyedLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if fn == nil {
		return errors.New("locking: fn must not be nil")
	}
	if key == "" {
		return errors.New("locking: key must not be empty")
	}

	name := k.namePrefix + key
	start := k.now()

	lockCtx, release, err := k.acquire(ctx, name)
	if err != nil {
		return err
	}
	defer release()

	if k.logger != nil {
		k.logger.DebugContext(ctx, "locking: lock acquired",
			slog.String("lock.name", name),
			slog.Duration("lock.acquire_latency", k.now().Sub(start)),
		)
	}

	workCtx, cancel := lockCtx, context.CancelFunc(func() {})
	if k.holdAtMostFor > 0 {
		workCtx, cancel = context.WithTimeout(lockCtx, k.holdAtMostFor)
	}
	defer cancel()

	return fn(workCtx)
}

func (k *KeyedLocker) acquire(ctx context.Context, name string) (context.Context, context.CancelFunc, error) {
	if !k.waitForLock {
		lockCtx, release, err := k.locker.TryWithContext(ctx, name)
		switch {
		case err == nil:
			return lockCtx, release, nil
		case errors.Is(err, rueidislock.ErrNotLocked):
			return nil, nil, ErrLockNotAcquired
		case errors.Is(err, rueidislock.ErrLockerClosed):
			return nil, nil, fmt.Errorf("locking: locker closed while trying to acquire lock %q: %w", name, err)
		default:
			return nil, nil, fmt.Errorf("locking: failed to try-acquire lock %q: %w", name, err)
		}
	}

	// rueidislock derives the lock context from the context it is given, so the
	// acquire timeout cannot be applied to it directly.
	waitCtx, stopWaiting := context.WithCancel(ctx)

	done := make(chan acquireResult, 1)
	go func() {
		lockCtx, release, err := k.locker.WithContext(waitCtx, name)
		done <- acquireResult{lockCtx, release, err}
	}()

	var timeout <-chan time.Time
	if k.acquireTimeout > 0 {
		timer := time.NewTimer(k.acquireTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-done:
		if r.err != nil {
			stopWaiting()
			if errors.Is(r.err, rueidislock.ErrLockerClosed) {
				return nil, nil, fmt.Errorf("locking: locker closed while acquiring lock %q: %w", name, r.err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			return nil, nil, fmt.Errorf("locking: failed to acquire lock %q: %w", name, r.err)
		}
		return r.ctx, func() {
			r.release()
			stopWaiting()
		}, nil
	case <-timeout:
		stopWaiting()
		drain(done)
		return nil, nil, fmt.Errorf("locking: acquire lock %q: %w", name, ErrAcquireTimeout)
	case <-ctx.Done():
		stopWaiting()
		drain(done)
		return nil, nil, ctx.Err()
	}
}

type acquireResult struct {
	ctx     context.Context
	release context.CancelFunc
	err     error
}

// drain releases a lock that was acquired after the caller stopped waiting.
func drain(done <-chan acquireResult) {
	go func() {
		if r := <-done; r.err == nil {
			r.release()
		}
	}()
}
