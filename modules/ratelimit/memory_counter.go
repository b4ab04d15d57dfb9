package ratelimit

import (
	"context"
	"sync"
	"time"

	"taskboard/modules/clock"
)

var _ CounterStore = (*MemoryCounter)(nil)

type memoryEntry struct {
	n         int64
	expiresAt time.Time
}

// MemoryCounter is a CounterStore for a single instance. Expired counters
// are removed when they are next touched.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   clock.Clock
}

func NewMemoryCounter(c clock.Clock) *MemoryCounter {
	if c == nil {
		c = clock.RealClockProvider()
	}
	return &MemoryCounter{entries: make(map[string]memoryEntry), clock: c}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	e, ok := m.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = memoryEntry{expiresAt: now.Add(ttl)}
	}
	e.n++
	m.entries[key] = e
	return e.n, nil
}

func (m *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return 0, nil
	}
	if !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return 0, nil
	}
	return e.n, nil
}
