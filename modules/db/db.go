// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package db

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
)

type (
	// TxFn is the unit of work run inside a transaction; the profile writer
	// reads the row FOR UPDATE and writes it back through q.
	TxFn func(ctx context.Context, q Querier) error

	// Querier runs bob queries. Pools and transactions both satisfy it, so
	// the user reader and writer do not care which one they hold.
	Querier interface {
		bob.Executor
	}

	// ConnectionPool is everything the user store and main need from
	// Postgres: readiness, primary/replica routing, migrations, transactions.
	ConnectionPool interface {
		HealthManager
		ConnectionManager
		MigrationManager
		TxManager

		// Shutdown attempts to gracefully close all underlying connections.
		Shutdown(context.Context) error
	}

	// HealthManager backs /readyz and the startup check.
	HealthManager interface {
		HealthCheck(ctx context.Context) error
	}

	// ConnectionManager routes profile reads to replicas and updates to the primary.
	ConnectionManager interface {
		// Writer returns the primary pool; profile updates always use it.
		Writer() Querier

		ReaderConnectionManager
	}

	ReaderConnectionManager interface {
		// Reader returns a replica pool for GetProfile, or the primary
		// when no replica is configured.
		Reader() Querier
	}

	// MigrationManager applies the embedded schema migrations to the primary.
	MigrationManager interface {
		MigrateUp(ctx context.Context) error
		MigrateDown(ctx context.Context) error
	}

	// TxManager runs fn in one transaction, committed when fn returns nil.
	// WithTimeoutTx bounds the whole read-merge-write of an update.
	TxManager interface {
		WithTx(ctx context.Context, fn TxFn) error
		WithTimeoutTx(ctx context.Context, timeout time.Duration, fn TxFn) error
	}
)
