package clock

import "time"

// Clock stamps finished matches. Tests substitute mocks.MockClock.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// System reads the wall clock, normalised to UTC so results stored in
// different backends compare equal
var System Clock = Func(func() time.Time { return time.Now().UTC() })
