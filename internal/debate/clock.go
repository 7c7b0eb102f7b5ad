package debate

import "time"

// Clock abstracts time for the session's timer-driven components (poller,
// typing debounce, summary animation) so tests can drive them with a
// simulated clock instead of sleeping.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules f to run in its own goroutine after d elapses.
	// The returned Timer can cancel the call before it fires.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled call.
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was
	// still pending.
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return systemClock{} }
