package domain

import (
	"time"

	"taskboard/modules/clock"

	"github.com/gofrs/uuid/v5"
)

type (
	Application struct {
		reader UserReadStore
		writer UserWriteStore
		locker IdentityLocker

		notFound  NotFoundPolicy
		txTimeout time.Duration
		clock     clock.Clock
		metrics   UpdateRecorder
	}

	// ProfileDetails is the closed set of profile sub-fields.
	ProfileDetails struct {
		Bio      string
		Phone    string
		Location string
	}

	// User is the stored account record. PasswordHash never leaves the
	// domain; callers get a SanitizedUser.
	User struct {
		ID           uuid.UUID
		Name         string
		Email        string
		Profile      ProfileDetails
		PasswordHash string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// SanitizedUser is a User without credentials.
	SanitizedUser struct {
		ID        uuid.UUID
		Name      string
		Email     string
		Profile   ProfileDetails
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// UserProfileUpdate is the full post-merge state written by the store.
	UserProfileUpdate struct {
		ID        uuid.UUID
		Name      string
		Profile   ProfileDetails
		UpdatedAt time.Time
	}
)

func (u *User) Sanitize() *SanitizedUser {
	return &SanitizedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Profile:   u.Profile,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NotFoundPolicy decides how a missing user record is reported to callers.
type NotFoundPolicy int

const (
	// ConcealNotFound reports a missing record as ErrUnhandled, the same as
	// a store failure, so callers cannot probe for account existence.
	ConcealNotFound NotFoundPolicy = iota
	// RevealNotFound reports a missing record as ErrUserNotFound.
	RevealNotFound
)

func (p NotFoundPolicy) String() string {
	switch p {
	case ConcealNotFound:
		return "conceal"
	case RevealNotFound:
		return "reveal"
	}
	return "unknown"
}
