package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"taskboard/core/profile/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestProfileDocumentScan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    profileDocument
		wantErr bool
	}{
		{"nil", nil, profileDocument{}, false},
		{"bytes", []byte(`{"bio":"b","phone":"p","location":"l"}`), profileDocument{Bio: "b", Phone: "p", Location: "l"}, false},
		{"string partial", `{"bio":"only"}`, profileDocument{Bio: "only"}, false},
		{"unknown keys ignored", `{"bio":"b","avatar":"x"}`, profileDocument{Bio: "b"}, false},
		{"bad json", `{`, profileDocument{}, true},
		{"bad type", 42, profileDocument{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d profileDocument
			err := d.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d != tt.want {
				t.Fatalf("Scan() = %+v, want %+v", d, tt.want)
			}
		})
	}
}

func TestProfileDocumentValueWritesEveryKey(t *testing.T) {
	v, err := profileDocument{Bio: "b"}.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != `{"bio":"b","phone":"","location":""}` {
		t.Fatalf("Value() = %v", v)
	}
}

func TestWrapUserError(t *testing.T) {
	other := errors.New("conn reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, domain.ErrUserNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), domain.ErrUserNotFound},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, domain.ErrUserNotFound},
		{"other", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapUserError(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("wrapUserError() = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("wrapUserError() = %v, want %v", got, tt.want)
			}
		})
	}

	var pgErr *pgconn.PgError
	if err := wrapUserError(&pgconn.PgError{Code: "40001", Message: "could not serialize"}); !errors.As(err, &pgErr) {
		t.Fatalf("pg errors must stay inspectable, got %v", err)
	}
}

func TestQuoteTable(t *testing.T) {
	if got := quoteTable("users"); got != `"users"` {
		t.Fatalf("quoteTable() = %s", got)
	}
}
