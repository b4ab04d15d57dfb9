// Package memory is an in-process user store for local development and tests.
//
// Transactions stage writes and apply them on commit. They do not isolate
// reads from concurrent transactions, so callers that read-modify-write must
// hold the per-identity lock, as domain.Application does.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"taskboard/core/profile/domain"

	"github.com/gofrs/uuid/v5"
)

var (
	_ domain.UserReadStore  = (*Store)(nil)
	_ domain.UserWriteStore = (*Store)(nil)
)

type Store struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]domain.User
	writes atomic.Int64
}

func New(users ...domain.User) *Store {
	s := &Store{users: make(map[uuid.UUID]domain.User, len(users))}
	s.Seed(users...)
	return s
}

// Seed inserts or replaces users. It is not counted as a write.
func (s *Store) Seed(users ...domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.ID] = u
	}
}

// Writes reports the number of committed profile updates.
func (s *Store) Writes() int64 {
	return s.writes.Load()
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx domain.UserWriteTx) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.WithTx(ctx, fn)
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.UserWriteTx) error) error {
	tx := &storeTx{store: s, staged: map[uuid.UUID]domain.User{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory: commit: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range tx.staged {
		s.users[id] = u
		s.writes.Add(1)
	}
	return nil
}

type storeTx struct {
	store  *Store
	staged map[uuid.UUID]domain.User
}

func (t *storeTx) GetUserForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := t.staged[id]; ok {
		return &u, nil
	}
	return t.store.GetUserByID(ctx, id)
}

func (t *storeTx) UpdateUserProfile(ctx context.Context, params *domain.UserProfileUpdate) (*domain.User, error) {
	current, err := t.GetUserForUpdate(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	next := *current
	next.Name = params.Name
	next.Profile = params.Profile
	next.UpdatedAt = params.UpdatedAt
	t.staged[params.ID] = next
	return &next, nil
}
