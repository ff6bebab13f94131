// Package clock provides the two scheduling primitives a composition needs
// from its host: a one-shot timer and a periodic tick.
package clock

import (
	"math"
	"time"
)

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Clock is the time source of a composition.
//
// Callbacks scheduled through a Clock never run concurrently with each
// other or with work posted to the same clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) (stop func())
}

// Seconds converts a duration in fractional seconds to a time.Duration,
// saturating instead of overflowing.
func Seconds(s float64) time.Duration {
	const max = float64(1<<63 - 1)
	d := s * float64(time.Second)
	switch {
	case math.IsNaN(d):
		return 0
	case d >= max:
		return time.Duration(1<<63 - 1)
	case d <= -max:
		return -time.Duration(1<<63 - 1)
	}
	return time.Duration(d)
}
