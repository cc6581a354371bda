package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps run start times and article collection times.
var clock = clockwork.NewRealClock()

// SetClock replaces the package time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}
