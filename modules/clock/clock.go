package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

var RealClockProvider = sync.OnceValue(func() Clock {
	return &RealClock{}
})

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant. Used by tests and seeding.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
