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

package domain

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// UserReadStore defines the port for read operations on user records.
//
// Read/Write Separation Pattern:
// This interface is separated from UserWriteStore so implementations can
// route reads to a replica. Reads may therefore lag the primary slightly;
// anything that must observe the latest committed state (the update merge)
// reads through UserWriteTx instead.
type UserReadStore interface {
	// GetUserByID returns the user with the given id.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// UserWriteStore defines the port for write operations on user records.
//
// Transaction Handling:
// All mutations happen through a UserWriteTx obtained from WithTx. If fn
// returns an error the transaction is rolled back, otherwise committed.
// Do NOT nest WithTx calls; UserWriteTx intentionally has no WithTx.
type UserWriteStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx UserWriteTx) error) error
	// WithTimeoutTx is the same as WithTx but applies a context timeout before starting the transaction.
	WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx UserWriteTx) error) error
}

// UserWriteTx is a transaction-scoped view of the user store.
//
// A UserWriteTx is NOT safe for concurrent use and must not outlive the
// function that received it.
type UserWriteTx interface {
	// GetUserForUpdate reads the current record on the primary and, where the
	// store supports it, locks the row until the transaction ends
	// (SELECT ... FOR UPDATE). Returns ErrUserNotFound if missing.
	GetUserForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	// UpdateUserProfile writes name, profile and updated_at and returns the
	// stored record as of the end of the statement. Email, password and
	// created_at are never touched. Returns ErrUserNotFound if missing.
	UpdateUserProfile(ctx context.Context, params *UserProfileUpdate) (*User, error)
}

// IdentityLocker serializes work per key across every process that shares
// the same backend. Implementations: a redis lock for multi-replica
// deployments, an in-process keyed mutex otherwise.
type IdentityLocker interface {
	// WithLock runs fn while holding key. Returns fn's error, or the
	// acquisition error without calling fn.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// UpdateRecorder receives update outcomes for metrics.
type UpdateRecorder interface {
	RecordUpdate(ctx context.Context, outcome string)
	RecordLockWait(ctx context.Context, waitMs float64)
}
