package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "debate.status_changed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Session Lifecycle Events
// -----------------------------------------------------------------------------

// StatusChangedEvent is emitted on every debate session state transition.
// Statuses are carried as strings to avoid a dependency on the debate
// package (which publishes these events).
type StatusChangedEvent struct {
	baseEvent
	DebateID string // Debate session identifier
	Previous string // Previous status (empty on the first transition)
	Current  string // New current status
}

// NewStatusChangedEvent creates a StatusChangedEvent.
func NewStatusChangedEvent(debateID, previous, current string) StatusChangedEvent {
	return StatusChangedEvent{
		baseEvent: newBaseEvent("debate.status_changed"),
		DebateID:  debateID,
		Previous:  previous,
		Current:   current,
	}
}

// TranscriptChangedEvent is emitted whenever the merged transcript changes:
// a provisional append, an in-place resolution, an assistant arrival, a
// typing placeholder toggle, or a clear.
type TranscriptChangedEvent struct {
	baseEvent
	DebateID string // Debate session identifier
	Length   int    // Merged transcript length after the change
}

// NewTranscriptChangedEvent creates a TranscriptChangedEvent.
func NewTranscriptChangedEvent(debateID string, length int) TranscriptChangedEvent {
	return TranscriptChangedEvent{
		baseEvent: newBaseEvent("debate.transcript_changed"),
		DebateID:  debateID,
		Length:    length,
	}
}

// -----------------------------------------------------------------------------
// Summary Generation Events
// -----------------------------------------------------------------------------

// SummaryStepEvent is emitted as the cosmetic summary-generation animation
// advances. Steps are 1-based; the final step is held until the real API
// call resolves.
type SummaryStepEvent struct {
	baseEvent
	DebateID string // Debate session identifier
	Step     int    // Current step, 1..total
	Total    int    // Total number of steps
	Label    string // Human-readable step description
}

// NewSummaryStepEvent creates a SummaryStepEvent.
func NewSummaryStepEvent(debateID string, step, total int, label string) SummaryStepEvent {
	return SummaryStepEvent{
		baseEvent: newBaseEvent("debate.summary_step"),
		DebateID:  debateID,
		Step:      step,
		Total:     total,
		Label:     label,
	}
}

// SummaryReadyEvent is emitted when the adjudication summary has been
// attached and the session is completed.
type SummaryReadyEvent struct {
	baseEvent
	DebateID string // Debate session identifier
}

// NewSummaryReadyEvent creates a SummaryReadyEvent.
func NewSummaryReadyEvent(debateID string) SummaryReadyEvent {
	return SummaryReadyEvent{
		baseEvent: newBaseEvent("debate.summary_ready"),
		DebateID:  debateID,
	}
}

// -----------------------------------------------------------------------------
// Error Events
// -----------------------------------------------------------------------------

// SessionErrorEvent is emitted when an operation fails in a way the user
// should see (send failure, poll exhaustion, end-debate failure).
// Invariant-violation no-ops do not emit events.
type SessionErrorEvent struct {
	baseEvent
	DebateID  string // Debate session identifier
	Message   string // User-facing error text
	Retryable bool   // Whether the user can usefully retry
}

// NewSessionErrorEvent creates a SessionErrorEvent.
func NewSessionErrorEvent(debateID, message string, retryable bool) SessionErrorEvent {
	return SessionErrorEvent{
		baseEvent: newBaseEvent("debate.error"),
		DebateID:  debateID,
		Message:   message,
		Retryable: retryable,
	}
}
