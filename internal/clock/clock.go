// Package clock provides the time sources injected into the dispatcher.
package clock

import (
	"time"

	"bot-dispatch/internal/domain"
)

// Real is the wall clock. Callbacks run on their own goroutine.
type Real struct{}

// NewReal returns the wall clock.
func NewReal() domain.Clock {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, f func()) domain.Timer {
	return time.AfterFunc(d, f)
}
