package testutil

import (
	"time"

	"github.com/juju/clock/testclock"
)

// Epoch is the fixed instant test clocks start at.
var Epoch = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

// NewClock returns a test clock stopped at Epoch.
//
// Advance it explicitly; it never moves on its own.
func NewClock() *testclock.Clock {
	return testclock.NewClock(Epoch)
}
