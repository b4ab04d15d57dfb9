// Package keymutex provides an in-process mutex keyed by string with
// context-aware acquisition. It is the single-replica counterpart of
// modules/db/redis/locking.
package keymutex

import (
	"context"
	"errors"
	"sync"
)

// KeyMutex serializes callers per key. Entries are reference counted and
// removed once no caller holds or waits on them.
type KeyMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	// buffered with capacity 1; a value in the channel means the key is held
	sem  chan struct{}
	refs int
}

func New() *KeyMutex {
	return &KeyMutex{entries: make(map[string]*entry)}
}

// Lock blocks until the key is acquired or ctx is done.
func (m *KeyMutex) Lock(ctx context.Context, key string) error {
	e := m.ref(key)

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.unref(key, e)
		return ctx.Err()
	}
}

// Unlock releases key. Unlocking a key that is not held panics, as with sync.Mutex.
func (m *KeyMutex) Unlock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		panic("keymutex: unlock of unlocked key " + key)
	}

	select {
	case <-e.sem:
	default:
		panic("keymutex: unlock of unlocked key " + key)
	}
	m.unref(key, e)
}

// WithLock runs fn while holding key.
func (m *KeyMutex) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if fn == nil {
		return errors.New("keymutex: fn must not be nil")
	}
	if err := m.Lock(ctx, key); err != nil {
		return err
	}
	defer m.Unlock(key)

	return fn(ctx)
}

// Len reports the number of keys currently held or waited on.
func (m *KeyMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *KeyMutex) ref(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *KeyMutex) unref(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}
