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

// Package auth issues and verifies the HS256 bearer tokens that identify the
// caller of the profile endpoints, and carries the verified identity through
// a request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v4"

	"taskboard/modules/clock"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
	ErrNoIdentity   = errors.New("auth: no identity in context")
)

type Config struct {
	Secret string        `env:"SECRET"`
	Issuer string        `env:"ISSUER" envDefault:"taskboard-api"`
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

// Identity is the authenticated caller. Handlers trust it without re-validating.
type Identity struct {
	UserID uuid.UUID
}

type Claims struct {
	jwt.RegisteredClaims
}

type TokenService struct {
	key    []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

type TokenOption func(*TokenService)

func WithClock(c clock.Clock) TokenOption {
	return func(s *TokenService) {
		if c != nil {
			s.clock = c
		}
	}
}

func NewTokenService(cfg Config, opts ...TokenOption) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: secret must not be empty")
	}
	s := &TokenService{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		clock:  clock.RealClockProvider(),
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token whose subject is the user id.
func (s *TokenService) Issue(userID uuid.UUID) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns the identity it carries.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return Identity{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return Identity{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return Identity{UserID: id}, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
