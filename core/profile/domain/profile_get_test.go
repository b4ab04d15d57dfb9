package domain_test

import (
	"context"
	"errors"
	"testing"

	"taskboard/core/profile/adapters/persistence/memory"
	"taskboard/core/profile/domain"

	"github.com/gofrs/uuid/v5"
)

type brokenReader struct{}

func (brokenReader) GetUserByID(context.Context, uuid.UUID) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestGetProfile(t *testing.T) {
	u := newUser()
	store := memory.New(u)
	app := domain.NewApp(store, store, nil)

	got, err := app.GetProfile(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.ID != u.ID || got.Name != u.Name || got.Email != u.Email || got.Profile != u.Profile {
		t.Fatalf("GetProfile() = %+v", got)
	}
}

func TestGetProfileErrors(t *testing.T) {
	missing := uuid.Must(uuid.NewV4())
	store := memory.New()

	tests := []struct {
		name    string
		app     *domain.Application
		id      uuid.UUID
		wantErr error
	}{
		{"not found concealed", domain.NewApp(store, store, nil), missing, domain.ErrUnhandled},
		{"not found revealed", domain.NewApp(store, store, nil, domain.WithNotFoundPolicy(domain.RevealNotFound)), missing, domain.ErrUserNotFound},
		{"nil id concealed", domain.NewApp(store, store, nil), uuid.Nil, domain.ErrUnhandled},
		{"store failure", domain.NewApp(brokenReader{}, store, nil, domain.WithNotFoundPolicy(domain.RevealNotFound)), missing, domain.ErrUnhandled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.app.GetProfile(context.Background(), tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
