package debate

import (
	"sync"
	"time"
)

// TypingIndicator manages the synthetic "assistant is typing" placeholder.
// Show is idempotent; Hide is debounced so a placeholder that is about to
// be replaced by a real reply never visibly flickers out and back.
type TypingIndicator struct {
	mu         sync.Mutex
	transcript *Transcript
	clock      Clock
	debounce   time.Duration
	notify     func()

	activeID  string
	hideTimer Timer
}

// NewTypingIndicator returns an indicator writing through transcript.
// notify is invoked (without internal locks held) whenever the placeholder
// is added or removed; pass nil if no notification is needed.
func NewTypingIndicator(transcript *Transcript, clock Clock, debounce time.Duration, notify func()) *TypingIndicator {
	ti := &TypingIndicator{
		transcript: transcript,
		clock:      clock,
		debounce:   debounce,
		notify:     notify,
	}
	if ti.notify == nil {
		ti.notify = func() {}
	}
	return ti
}

// Show displays the typing placeholder. A pending debounced hide is
// cancelled; if the placeholder is already visible nothing else happens.
func (ti *TypingIndicator) Show() {
	ti.mu.Lock()
	ti.cancelHideLocked()
	if ti.activeID != "" {
		ti.mu.Unlock()
		return
	}
	placeholder := NewTypingPlaceholder(ti.clock.Now())
	if !ti.transcript.AppendTyping(placeholder) {
		ti.mu.Unlock()
		return
	}
	ti.activeID = placeholder.ID
	ti.mu.Unlock()
	ti.notify()
}

// Hide schedules removal of the placeholder after the debounce window.
// A Show before the window elapses cancels the removal. Hiding an already
// hidden indicator is a no-op.
func (ti *TypingIndicator) Hide() {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	if ti.activeID == "" || ti.hideTimer != nil {
		return
	}
	ti.hideTimer = ti.clock.AfterFunc(ti.debounce, ti.hideNow)
}

func (ti *TypingIndicator) hideNow() {
	ti.mu.Lock()
	ti.hideTimer = nil
	if ti.activeID == "" {
		ti.mu.Unlock()
		return
	}
	ti.activeID = ""
	removed := ti.transcript.RemoveTyping()
	ti.mu.Unlock()
	if removed {
		ti.notify()
	}
}

// ForceClear removes the placeholder immediately, bypassing the debounce.
// Used on teardown and when a real assistant message supersedes the
// placeholder. Safe to call at any time.
func (ti *TypingIndicator) ForceClear() {
	ti.mu.Lock()
	ti.cancelHideLocked()
	ti.activeID = ""
	removed := ti.transcript.RemoveTyping()
	ti.mu.Unlock()
	if removed {
		ti.notify()
	}
}

// Active reports whether the placeholder is currently shown, including
// while a debounced hide is pending.
func (ti *TypingIndicator) Active() bool {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	return ti.activeID != ""
}

func (ti *TypingIndicator) cancelHideLocked() {
	if ti.hideTimer != nil {
		ti.hideTimer.Stop()
		ti.hideTimer = nil
	}
}
