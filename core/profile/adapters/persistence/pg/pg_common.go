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
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskboard/core/profile/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const DefaultTable = "users"

// userColumns is the column list every query selects or returns.
var userColumns = []string{"id", "name", "email", "password", "profile", "created_at", "updated_at"}

type (
	// UserRow is the persistence entity shape used by storage adapters.
	UserRow struct {
		ID        uuid.UUID       `db:"id"`
		Name      string          `db:"name"`
		Email     string          `db:"email"`
		Password  string          `db:"password"`
		Profile   profileDocument `db:"profile"`
		CreatedAt time.Time       `db:"created_at"`
		UpdatedAt time.Time       `db:"updated_at"`
	}

	// profileDocument is the jsonb profile column. All three keys are always
	// written so a merge with the stored document replaces each of them.
	profileDocument struct {
		Bio      string `json:"bio"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
	}
)

var (
	_ sql.Scanner   = (*profileDocument)(nil)
	_ driver.Valuer = profileDocument{}
)

// Scan accepts the jsonb column as text or bytes. NULL scans to the zero document.
func (d *profileDocument) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = profileDocument{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("pg: cannot scan %T into profile document", src)
	}

	var doc profileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("pg: decode profile document: %w", err)
	}
	*d = doc
	return nil
}

func (d profileDocument) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func toUser(row UserRow) *domain.User {
	return &domain.User{
		ID:    row.ID,
		Name:  row.Name,
		Email: row.Email,
		Profile: domain.ProfileDetails{
			Bio:      row.Profile.Bio,
			Phone:    row.Profile.Phone,
			Location: row.Profile.Location,
		},
		PasswordHash: row.Password,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func fromProfile(p domain.ProfileDetails) profileDocument {
	return profileDocument{Bio: p.Bio, Phone: p.Phone, Location: p.Location}
}

// quoteTable returns the table name as a safely quoted identifier.
func quoteTable(table string) string {
	return pgx.Identifier{table}.Sanitize()
}

// wrapUserError centralizes mapping of DB errors to domain errors.
func wrapUserError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02": // invalid_text_representation, e.g. a malformed uuid
			return domain.ErrUserNotFound
		default:
			return fmt.Errorf("pg: %s (%s): %w", pgErr.Message, pgErr.Code, err)
		}
	}

	return err
}
