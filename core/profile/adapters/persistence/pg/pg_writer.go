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

package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskboard/core/profile/domain"
	"taskboard/modules/db"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/scan"
)

var _ domain.UserWriteStore = (*PostgresUserWriter)(nil)

type PostgresUserWriter struct {
	txm db.TxManager

	selectForUpdateSQL string
	updateProfileSQL   string
}

// NewPostgresUserWriter creates a writer whose transactions run on the primary.
func NewPostgresUserWriter(txm db.TxManager, table string) *PostgresUserWriter {
	if table == "" {
		table = DefaultTable
	}
	t := quoteTable(table)
	cols := strings.Join(userColumns, ", ")

	return &PostgresUserWriter{
		txm: txm,
		// Row lock held until the surrounding transaction ends.
		selectForUpdateSQL: fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? FOR UPDATE`, cols, t),
		// Merging into the stored jsonb keeps keys outside the recognized set intact.
		updateProfileSQL: fmt.Sprintf(`
			UPDATE %s
			SET name = ?, profile = COALESCE(profile, '{}'::jsonb) || ?::jsonb, updated_at = ?
			WHERE id = ?
			RETURNING %s
		`, t, cols),
	}
}

func (w *PostgresUserWriter) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.UserWriteTx) error) error {
	return w.txm.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &userWriterTx{parent: w, exec: q})
	})
}

func (w *PostgresUserWriter) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx domain.UserWriteTx) error) error {
	return w.txm.WithTimeoutTx(ctx, timeout, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &userWriterTx{parent: w, exec: q})
	})
}

// userWriterTx binds the writer's statements to one transaction.
// Placeholders are bob's "?" form, rewritten to $n for postgres.
type userWriterTx struct {
	parent *PostgresUserWriter
	exec   bob.Executor
}

func (t *userWriterTx) GetUserForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	q := psql.RawQuery(t.parent.selectForUpdateSQL, id)
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[UserRow]())
	if err != nil {
		return nil, wrapUserError(err)
	}
	return toUser(row), nil
}

func (t *userWriterTx) UpdateUserProfile(ctx context.Context, params *domain.UserProfileUpdate) (*domain.User, error) {
	doc, err := fromProfile(params.Profile).Value()
	if err != nil {
		return nil, fmt.Errorf("pg: encode profile: %w", err)
	}

	q := psql.RawQuery(t.parent.updateProfileSQL, params.Name, doc, params.UpdatedAt, params.ID)
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[UserRow]())
	if err != nil {
		return nil, wrapUserError(err)
	}
	return toUser(row), nil
}
