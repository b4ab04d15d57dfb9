package domain

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofrs/uuid/v5"
)

// GetProfile returns the caller's own record without credentials.
func (app *Application) GetProfile(ctx context.Context, userID uuid.UUID) (*SanitizedUser, error) {
	if userID.IsNil() {
		return nil, app.mapStoreError(ctx, "get profile", ErrUserNotFound)
	}
	user, err := app.reader.GetUserByID(ctx, userID)
	if err != nil {
		return nil, app.mapStoreError(ctx, "get profile", err)
	}
	return user.Sanitize(), nil
}

// mapStoreError reduces store and lock errors to the domain taxonomy.
// Not-found follows the configured NotFoundPolicy; everything else is
// logged and replaced with ErrUnhandled.
func (app *Application) mapStoreError(ctx context.Context, op string, err error) error {
	if errors.Is(err, ErrUserNotFound) {
		if app.notFound == RevealNotFound {
			return ErrUserNotFound
		}
		slog.WarnContext(ctx, "user record not found", slog.String("op", op))
		return ErrUnhandled
	}
	slog.ErrorContext(ctx, "unexpected error", slog.String("op", op), slog.Any("error", err))
	return ErrUnhandled
}
