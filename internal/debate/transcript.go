package debate

import (
	"sync"
	"time"
)

// Transcript is the local overlay of the server transcript. It holds the
// server-confirmed messages plus up to two synthetic entries: one pending
// provisional user message and one typing placeholder, always at the tail.
//
// All methods are safe for concurrent use; the session machine and the
// typing indicator's debounce timer both reach it.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
}

// NewTranscript returns an empty transcript overlay.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// SeedFromServer reconciles the overlay with a fetched server transcript.
// With no synthetic entries pending the server list simply replaces the
// overlay. While a provisional user message or typing placeholder is live,
// the server list is taken as the confirmed base and the synthetic entries
// are re-appended so in-flight state survives the refresh.
func (t *Transcript) SeedFromServer(server []Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var provisional, typing *Message
	for i := range t.messages {
		m := t.messages[i]
		switch {
		case m.IsProvisional() && !m.IsFailed():
			provisional = &t.messages[i]
		case m.IsTypingPlaceholder():
			typing = &t.messages[i]
		}
	}

	merged := make([]Message, len(server), len(server)+2)
	copy(merged, server)
	if provisional != nil {
		merged = append(merged, *provisional)
	}
	if typing != nil {
		merged = append(merged, *typing)
	}
	t.messages = merged
}

// AppendProvisionalUser creates a provisional user message for content and
// appends it. The caller is responsible for ensuring only one unresolved
// provisional message is in flight; HasPendingSend supports that check.
func (t *Transcript) AppendProvisionalUser(content string, now time.Time) Message {
	m := NewProvisionalUser(content, now)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, m)
	return m
}

// ResolveProvisionalUser replaces the provisional message with the given ID
// by its server-confirmed counterpart, in place. Resolving an ID that is no
// longer present is a no-op, so a late or duplicate confirmation is safe.
func (t *Transcript) ResolveProvisionalUser(provisionalID string, confirmed Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, m := range t.messages {
		if m.ID == provisionalID && m.IsProvisional() {
			t.messages[i] = confirmed
			return true
		}
	}
	return false
}

// MarkProvisionalFailed appends the failed-send marker to the provisional
// message with the given ID. Applying the marker twice is a no-op; the
// method reports whether it changed anything.
func (t *Transcript) MarkProvisionalFailed(provisionalID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, m := range t.messages {
		if m.ID != provisionalID || !m.IsProvisional() {
			continue
		}
		if m.IsFailed() {
			return false
		}
		t.messages[i].Content += FailedSendMarker
		return true
	}
	return false
}

// AppendAssistant appends a server-confirmed assistant message, removing
// any typing placeholder first so the real reply takes its place. A message
// whose ID is already present is dropped; the method reports whether the
// transcript changed.
func (t *Transcript) AppendAssistant(confirmed Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range t.messages {
		if m.ID == confirmed.ID {
			return false
		}
	}
	t.removeTypingLocked()
	t.messages = append(t.messages, confirmed)
	return true
}

// AppendTyping appends the typing placeholder. At most one placeholder
// exists at a time; a second append is a no-op. Reports whether the
// placeholder was added.
func (t *Transcript) AppendTyping(placeholder Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.messages {
		if m.IsTypingPlaceholder() {
			return false
		}
	}
	t.messages = append(t.messages, placeholder)
	return true
}

// RemoveTyping removes the typing placeholder if present and reports
// whether it did.
func (t *Transcript) RemoveTyping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeTypingLocked()
}

func (t *Transcript) removeTypingLocked() bool {
	for i, m := range t.messages {
		if m.IsTypingPlaceholder() {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every entry, synthetic or confirmed.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
}

// Messages returns a copy of the current overlay in display order.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of entries including synthetic ones.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// RealCount returns the number of entries excluding the typing placeholder.
// This is the baseline the reply poller compares server lengths against.
func (t *Transcript) RealCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, m := range t.messages {
		if !m.IsTypingPlaceholder() {
			n++
		}
	}
	return n
}

// RoundCount returns the number of user messages in the overlay, counting
// unresolved provisional entries as rounds in progress.
func (t *Transcript) RoundCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return RoundCount(t.messages)
}

// HasPendingSend reports whether an unresolved, unfailed provisional user
// message is in flight. While true, another send must not start.
func (t *Transcript) HasPendingSend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.messages {
		if m.IsProvisional() && !m.IsFailed() {
			return true
		}
	}
	return false
}

// HasTyping reports whether the typing placeholder is currently shown.
func (t *Transcript) HasTyping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.messages {
		if m.IsTypingPlaceholder() {
			return true
		}
	}
	return false
}
