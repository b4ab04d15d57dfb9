package domain

import (
	"context"
	"time"

	"taskboard/modules/clock"
	"taskboard/modules/keymutex"
)

const defaultTxTimeout = 2 * time.Second

type Option func(*Application)

func WithNotFoundPolicy(p NotFoundPolicy) Option {
	return func(app *Application) { app.notFound = p }
}

func WithTxTimeout(d time.Duration) Option {
	return func(app *Application) {
		if d > 0 {
			app.txTimeout = d
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(app *Application) {
		if c != nil {
			app.clock = c
		}
	}
}

func WithMetrics(m UpdateRecorder) Option {
	return func(app *Application) {
		if m != nil {
			app.metrics = m
		}
	}
}

// NewApp wires the profile use cases. A nil locker falls back to an
// in-process keyed mutex, which is only correct for a single replica.
func NewApp(reader UserReadStore, writer UserWriteStore, locker IdentityLocker, opts ...Option) *Application {
	if locker == nil {
		locker = keymutex.New()
	}
	app := &Application{
		reader:    reader,
		writer:    writer,
		locker:    locker,
		notFound:  ConcealNotFound,
		txTimeout: defaultTxTimeout,
		clock:     clock.RealClockProvider(),
		metrics:   noopRecorder{},
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

type noopRecorder struct{}

func (noopRecorder) RecordUpdate(context.Context, string)    {}
func (noopRecorder) RecordLockWait(context.Context, float64) {}
