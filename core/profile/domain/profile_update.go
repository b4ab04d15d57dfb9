package domain

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
)

const (
	outcomeOK      = "ok"
	outcomeNoop    = "noop"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// LockKey is the IdentityLocker key guarding a user's record.
func LockKey(userID uuid.UUID) string {
	return "profile:" + userID.String()
}

// UpdateProfile validates params, overlays them onto the stored record and
// returns the post-update record without credentials.
//
// The read-merge-write runs under the per-identity lock and inside one store
// transaction, so concurrent updates of different fields for the same user
// are all kept. A request that changes nothing is answered from the read
// store without taking the lock.
func (app *Application) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*SanitizedUser, error) {
	change, err := params.validate()
	if err != nil {
		app.metrics.RecordUpdate(ctx, outcomeInvalid)
		return nil, err
	}

	if change.isEmpty() {
		user, err := app.GetProfile(ctx, userID)
		if err != nil {
			app.metrics.RecordUpdate(ctx, outcomeError)
			return nil, err
		}
		app.metrics.RecordUpdate(ctx, outcomeNoop)
		return user, nil
	}

	if userID.IsNil() {
		app.metrics.RecordUpdate(ctx, outcomeError)
		return nil, app.mapStoreError(ctx, "update profile", ErrUserNotFound)
	}

	var updated *User
	waitStart := app.clock.Now()
	err = app.locker.WithLock(ctx, LockKey(userID), func(ctx context.Context) error {
		app.metrics.RecordLockWait(ctx, float64(app.clock.Now().Sub(waitStart).Microseconds())/1000)

		return app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx UserWriteTx) error {
			current, err := tx.GetUserForUpdate(ctx, userID)
			if err != nil {
				return err
			}

			next := &UserProfileUpdate{
				ID:        userID,
				Name:      current.Name,
				Profile:   OverlayProfile(current.Profile, change.overlay),
				UpdatedAt: app.clock.Now(),
			}
			if change.name != nil {
				next.Name = *change.name
			}

			u, err := tx.UpdateUserProfile(ctx, next)
			if err != nil {
				return err
			}
			updated = u
			return nil
		})
	})
	if err != nil {
		app.metrics.RecordUpdate(ctx, outcomeError)
		return nil, app.mapStoreError(ctx, "update profile", err)
	}
	if updated == nil {
		app.metrics.RecordUpdate(ctx, outcomeError)
		return nil, app.mapStoreError(ctx, "update profile", errors.New("store returned no record"))
	}

	app.metrics.RecordUpdate(ctx, outcomeOK)
	return updated.Sanitize(), nil
}
