package debate

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ID prefixes for locally synthesized messages. Server-confirmed messages
// never carry these prefixes, so membership is decidable from the ID alone.
const (
	provisionalPrefix = "local-"
	typingPrefix      = "typing-"
)

// TypingPlaceholderContent is the fixed body of the synthetic typing entry.
const TypingPlaceholderContent = "is typing..."

// FailedSendMarker is appended to a provisional message whose send failed.
const FailedSendMarker = " (failed to send)"

// Message is one transcript entry. Timestamp is milliseconds since the
// Unix epoch, matching the wire format.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// IsProvisional reports whether m is a locally created optimistic user
// message that has not been confirmed by the server.
func (m Message) IsProvisional() bool {
	return strings.HasPrefix(m.ID, provisionalPrefix)
}

// IsTypingPlaceholder reports whether m is the synthetic typing indicator.
func (m Message) IsTypingPlaceholder() bool {
	return strings.HasPrefix(m.ID, typingPrefix)
}

// IsFailed reports whether m is a provisional message marked as failed.
func (m Message) IsFailed() bool {
	return m.IsProvisional() && strings.HasSuffix(m.Content, FailedSendMarker)
}

// IsSynthetic reports whether m exists only in the local overlay.
func (m Message) IsSynthetic() bool {
	return m.IsProvisional() || m.IsTypingPlaceholder()
}

// NewProvisionalUser creates an optimistic user message for content.
func NewProvisionalUser(content string, now time.Time) Message {
	return Message{
		ID:        provisionalPrefix + uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: now.UnixMilli(),
	}
}

// NewTypingPlaceholder creates the synthetic assistant typing entry.
func NewTypingPlaceholder(now time.Time) Message {
	return Message{
		ID:        typingPrefix + uuid.NewString(),
		Role:      RoleAssistant,
		Content:   TypingPlaceholderContent,
		Timestamp: now.UnixMilli(),
	}
}

// Outcome is the adjudicated result of a completed debate.
type Outcome string

const (
	OutcomeParty    Outcome = "party"
	OutcomeCitizen  Outcome = "citizen"
	OutcomeBalanced Outcome = "balanced"
)

// KeyPoint contrasts the two sides on one contested point.
type KeyPoint struct {
	Point           string `json:"point"`
	PartyPosition   string `json:"partyPosition"`
	CitizenPosition string `json:"citizenPosition"`
}

// Conclusion is the adjudicator's verdict on a completed debate.
type Conclusion struct {
	Outcome         Outcome  `json:"outcome"`
	Reasoning       string   `json:"reasoning"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Summary is the structured wrap-up produced when a debate ends.
type Summary struct {
	PartyArguments   []string    `json:"partyArguments"`
	CitizenArguments []string    `json:"citizenArguments"`
	KeyPoints        []KeyPoint  `json:"keyPoints"`
	Conclusion       *Conclusion `json:"conclusion,omitempty"`
}

// Session is the server-side record of a debate as fetched from the API.
type Session struct {
	ID         string    `json:"id"`
	ShareToken string    `json:"shareToken,omitempty"`
	UserID     string    `json:"userId"`
	PartyID    string    `json:"partyId"`
	PartyName  string    `json:"partyName,omitempty"`
	Topic      string    `json:"topic"`
	Messages   []Message `json:"messages"`
	MaxRounds  int       `json:"maxRounds"`
	Completed  bool      `json:"completed"`
	Summary    *Summary  `json:"summary,omitempty"`
	PartyVotes int       `json:"partyVotes"`
	UserVotes  int       `json:"userVotes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RoundCount returns the number of debate rounds in msgs. A round is one
// user message; the count is always derived, never stored.
func RoundCount(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// Status is the session lifecycle state.
type Status string

const (
	StatusIdle              Status = "idle"
	StatusLoadingDebate     Status = "loadingDebate"
	StatusActive            Status = "active"
	StatusSendingMessage    Status = "sendingMessage"
	StatusWaitingForBot     Status = "waitingForBot"
	StatusFinalRound        Status = "finalRound"
	StatusGeneratingSummary Status = "generatingSummary"
	StatusCompleted         Status = "completed"
)

// IsTerminal reports whether no further transitions can leave s.
func (s Status) IsTerminal() bool { return s == StatusCompleted }

// CanSend reports whether a user message may be dispatched in s.
func (s Status) CanSend() bool { return s == StatusActive }

// CanEnd reports whether the debate may be ended in s.
func (s Status) CanEnd() bool {
	switch s {
	case StatusActive, StatusFinalRound, StatusWaitingForBot, StatusSendingMessage:
		return true
	}
	return false
}
