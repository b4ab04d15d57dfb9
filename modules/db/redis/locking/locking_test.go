package locking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/rueidis/rueidislock"
)

// fakeLocker is an in-process stand-in for rueidislock.Locker.
// Embedding the interface satisfies methods the tests never call.
type fakeLocker struct {
	rueidislock.Locker

	mu     sync.Mutex
	held   map[string]chan struct{}
	names  []string
	closed bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]chan struct{}{}}
}

func (f *fakeLocker) WithContext(ctx context.Context, name string) (context.Context, context.CancelFunc, error) {
	for {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return nil, nil, rueidislock.ErrLockerClosed
		}
		ch, busy := f.held[name]
		if !busy {
			lockCtx, cancel := f.grant(ctx, name)
			f.mu.Unlock()
			return lockCtx, cancel, nil
		}
		f.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

func (f *fakeLocker) TryWithContext(ctx context.Context, name string) (context.Context, context.CancelFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, nil, rueidislock.ErrLockerClosed
	}
	if _, busy := f.held[name]; busy {
		return nil, nil, rueidislock.ErrNotLocked
	}
	lockCtx, cancel := f.grant(ctx, name)
	return lockCtx, cancel, nil
}

func (f *fakeLocker) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// grant must be called with f.mu held.
func (f *fakeLocker) grant(ctx context.Context, name string) (context.Context, context.CancelFunc) {
	ch := make(chan struct{})
	f.held[name] = ch
	f.names = append(f.names, name)
	lockCtx, cancel := context.WithCancel(ctx)
	var once sync.Once
	return lockCtx, func() {
		once.Do(func() {
			cancel()
			f.mu.Lock()
			delete(f.held, name)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *fakeLocker) isHeld(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.held[name]
	return ok
}

func TestWithLockRunsAndReleases(t *testing.T) {
	fl := newFakeLocker()
	k := NewKeyedLocker(fl, WithNamePrefix("profile:"))

	ran := false
	err := k.WithLock(context.Background(), "42", func(ctx context.Context) error {
		ran = true
		if !fl.isHeld("profile:42") {
			t.Error("lock should be held while fn runs")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if !ran {
		t.Fatal("fn was not called")
	}
	if fl.isHeld("profile:42") {
		t.Fatal("lock should be released after fn returns")
	}
	if len(fl.names) != 1 || fl.names[0] != "profile:42" {
		t.Fatalf("lock names = %v", fl.names)
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	fl := newFakeLocker()
	k := NewKeyedLocker(fl)

	boom := errors.New("boom")
	err := k.WithLock(context.Background(), "a", func(ctx context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("WithLock() error = %v, want %v", err, boom)
	}
	if fl.isHeld("a") {
		t.Fatal("lock should be released after fn error")
	}
}

func TestWithLockSerializesSameKey(t *testing.T) {
	fl := newFakeLocker()
	k := NewKeyedLocker(fl)

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := k.WithLock(context.Background(), "same", func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("WithLock() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
}

func TestWithLockAcquireTimeout(t *testing.T) {
	fl := newFakeLocker()
	k := NewKeyedLocker(fl, WithAcquireTimeout(20*time.Millisecond))

	_, release, err := fl.WithContext(context.Background(), "busy")
	if err != nil {
		t.Fatalf("seed lock: %v", err)
	}
	defer release()

	called := false
	err = k.WithLock(context.Background(), "busy", func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrAcquireTimeout) {
		t.Fatalf("WithLock() error = %v, want ErrAcquireTimeout", err)
	}
	if called {
		t.Fatal("fn must not run when the lock was not acquired")
	}
}

func TestWithLockTryOnce(t *testing.T) {
	fl := newFakeLocker()
	k := NewKeyedLocker(fl, WithWaitForLock(false))

	_, release, err := fl.TryWithContext(context.Background(), "busy")
	if err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	err = k.WithLock(context.Background(), "busy", func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("WithLock() error = %v, want ErrLockNotAcquired", err)
	}

	release()
	if err := k.WithLock(context.Background(), "busy", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("WithLock() after release error = %v", err)
	}
}

func TestWithLockLockerClosed(t *testing.T) {
	fl := newFakeLocker()
	fl.Close()
	k := NewKeyedLocker(fl)

	err := k.WithLock(context.Background(), "a", func(ctx context.Context) error { return nil })
	if !errors.Is(err, rueidislock.ErrLockerClosed) {
		t.Fatalf("WithLock() error = %v, want ErrLockerClosed", err)
	}
}

func TestWithLockHoldAtMostFor(t *testing.T) {
	fl := newFakeLocker()
	k := NewKeyedLocker(fl, WithHoldAtMostFor(10*time.Millisecond))

	err := k.WithLock(context.Background(), "a", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WithLock() error = %v, want deadline exceeded", err)
	}
}

func TestWithLockRejectsEmptyKey(t *testing.T) {
	k := NewKeyedLocker(newFakeLocker())
	if err := k.WithLock(context.Background(), "", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for empty key")
	}
}
