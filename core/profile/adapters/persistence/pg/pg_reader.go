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
	"log/slog"

	"taskboard/core/profile/domain"
	"taskboard/modules/db"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var _ domain.UserReadStore = (*PostgresUserReader)(nil)

type PostgresUserReader struct {
	table string
	pool  db.ReaderConnectionManager // calls Reader() at runtime
}

// NewPostgresUserReader creates a reader that calls Reader() per query, so
// reads spread over the configured replicas and fall back to the primary.
func NewPostgresUserReader(pool db.ReaderConnectionManager, table string) *PostgresUserReader {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresUserReader{table: table, pool: pool}
}

func (r *PostgresUserReader) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := psql.Select(
		sm.Columns(anySlice(userColumns)...),
		sm.From(r.table),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	row, err := bob.One(ctx, r.pool.Reader(), query, scan.StructMapper[UserRow]())
	if err != nil {
		err = wrapUserError(err)
		if err != domain.ErrUserNotFound {
			slog.ErrorContext(ctx, "GetUserByID query error", slog.Any("err", err))
		}
		return nil, err
	}
	return toUser(row), nil
}

func anySlice(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}
