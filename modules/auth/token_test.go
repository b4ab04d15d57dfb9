package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v4"

	"taskboard/modules/clock"
)

func newService(t *testing.T, opts ...TokenOption) *TokenService {
	t.Helper()
	s, err := NewTokenService(Config{Secret: "test-secret", Issuer: "taskboard-api", TTL: time.Hour}, opts...)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return s
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	s := newService(t)
	id := uuid.Must(uuid.NewV4())

	tok, err := s.Issue(id)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	got, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got.UserID != id {
		t.Fatalf("UserID = %s, want %s", got.UserID, id)
	}
}

func TestVerifyRejects(t *testing.T) {
	s := newService(t)
	id := uuid.Must(uuid.NewV4())

	other, err := NewTokenService(Config{Secret: "other-secret", Issuer: "taskboard-api", TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	wrongKey, _ := other.Issue(id)

	wrongIssuerSvc, _ := NewTokenService(Config{Secret: "test-secret", Issuer: "someone-else", TTL: time.Hour})
	wrongIssuer, _ := wrongIssuerSvc.Issue(id)

	expiredSvc := newService(t, WithClock(clock.FixedClock{At: time.Now().Add(-48 * time.Hour)}))
	expired, _ := expiredSvc.Issue(id)

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), Issuer: "taskboard-api"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "taskboard-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong key", wrongKey, ErrInvalidToken},
		{"wrong issuer", wrongIssuer, ErrInvalidToken},
		{"expired", expired, ErrTokenExpired},
		{"alg none", noneAlg, ErrInvalidToken},
		{"subject not uuid", badSubject, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService(Config{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIdentityContext(t *testing.T) {
	if _, err := IdentityFrom(context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("IdentityFrom(empty) error = %v", err)
	}

	id := Identity{UserID: uuid.Must(uuid.NewV4())}
	got, err := IdentityFrom(WithIdentity(context.Background(), id))
	if err != nil || got != id {
		t.Fatalf("IdentityFrom() = %v, %v", got, err)
	}
}
