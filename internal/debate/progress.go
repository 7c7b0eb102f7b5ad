package debate

import (
	"sync"
	"time"
)

// SummarySteps are the cosmetic stages shown while the backend generates
// the debate summary. The driver advances through them on a fixed cadence
// and holds at the last one; it never claims completion on its own.
var SummarySteps = []string{
	"Reviewing the debate",
	"Weighing the arguments",
	"Scoring both sides",
	"Writing the adjudication",
}

// ProgressDriver animates the summary-generation steps. Start sets step 1
// immediately and schedules one advance per interval until the final step,
// where the driver holds until Stop. onAdvance fires for each timed advance
// (steps 2 and up), never for the initial step and never concurrently with
// the driver's own lock held.
type ProgressDriver struct {
	mu        sync.Mutex
	clock     Clock
	interval  time.Duration
	onAdvance func(step int)

	step    int
	timer   Timer
	running bool
}

// NewProgressDriver returns an idle driver. onAdvance may be nil.
func NewProgressDriver(clock Clock, interval time.Duration, onAdvance func(step int)) *ProgressDriver {
	pd := &ProgressDriver{clock: clock, interval: interval, onAdvance: onAdvance}
	if pd.onAdvance == nil {
		pd.onAdvance = func(int) {}
	}
	return pd
}

// Start begins the animation at step 1. Starting a running driver is a
// no-op.
func (pd *ProgressDriver) Start() {
	pd.mu.Lock()
	defer pd.mu.Unlock()
	if pd.running {
		return
	}
	pd.running = true
	pd.step = 1
	pd.scheduleLocked()
}

// Stop halts the animation, leaving the current step in place so a final
// render still shows where the animation ended. Idempotent.
func (pd *ProgressDriver) Stop() {
	pd.mu.Lock()
	defer pd.mu.Unlock()
	pd.running = false
	if pd.timer != nil {
		pd.timer.Stop()
		pd.timer = nil
	}
}

// Reset stops the driver and returns the step to zero, for reuse after a
// failed summary request.
func (pd *ProgressDriver) Reset() {
	pd.mu.Lock()
	defer pd.mu.Unlock()
	pd.running = false
	if pd.timer != nil {
		pd.timer.Stop()
		pd.timer = nil
	}
	pd.step = 0
}

// Step returns the current 1-based step, or zero before Start.
func (pd *ProgressDriver) Step() int {
	pd.mu.Lock()
	defer pd.mu.Unlock()
	return pd.step
}

// Total returns the number of animation steps.
func (pd *ProgressDriver) Total() int { return len(SummarySteps) }

// Label returns the label for the given 1-based step, or empty if out of
// range.
func Label(step int) string {
	if step < 1 || step > len(SummarySteps) {
		return ""
	}
	return SummarySteps[step-1]
}

// AtFinalStep reports whether the animation has reached its last step.
func (pd *ProgressDriver) AtFinalStep() bool {
	pd.mu.Lock()
	defer pd.mu.Unlock()
	return pd.step >= len(SummarySteps)
}

func (pd *ProgressDriver) scheduleLocked() {
	if pd.step >= len(SummarySteps) {
		pd.timer = nil
		return
	}
	pd.timer = pd.clock.AfterFunc(pd.interval, pd.advance)
}

func (pd *ProgressDriver) advance() {
	pd.mu.Lock()
	if !pd.running {
		pd.mu.Unlock()
		return
	}
	pd.step++
	step := pd.step
	pd.scheduleLocked()
	pd.mu.Unlock()
	pd.onAdvance(step)
}
