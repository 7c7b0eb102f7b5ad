package debate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rostra-dev/rostra/internal/errors"
	"github.com/rostra-dev/rostra/internal/event"
	"github.com/rostra-dev/rostra/internal/logging"
)

// Backend is the slice of the API client the session machine needs. ref is
// a debate reference: a numeric ID for owned debates or a share token.
type Backend interface {
	// GetDebate fetches the debate addressed by ref.
	GetDebate(ctx context.Context, ref string) (*Session, error)

	// SendMessage posts a user message and returns the server-confirmed
	// message record.
	SendMessage(ctx context.Context, ref, content string) (Message, error)

	// EndDebate finalizes the debate and returns its summary.
	EndDebate(ctx context.Context, ref string) (*Summary, error)
}

// MachineConfig configures a session Machine.
type MachineConfig struct {
	// Ref addresses the debate on the backend.
	Ref string
	// Backend performs the API calls.
	Backend Backend
	// Bus receives session events. Required.
	Bus *event.Bus
	// Clock drives all timers. Defaults to SystemClock.
	Clock Clock
	// Logger receives structured logs. Defaults to a no-op logger.
	Logger *logging.Logger
	// UserID is the authenticated user, used for the ownership check.
	// Empty skips the check.
	UserID string
	// IsAdmin bypasses the ownership check.
	IsAdmin bool

	// Polling tunes the reply poller. Zero value means defaults.
	Polling PollerConfig
	// TypingShowDelay is how long after a send the typing placeholder
	// appears.
	TypingShowDelay time.Duration
	// TypingHideDebounce is the removal debounce for the placeholder.
	TypingHideDebounce time.Duration
	// SummaryStepInterval is the summary animation cadence.
	SummaryStepInterval time.Duration
	// RequestTimeout bounds each backend call.
	RequestTimeout time.Duration
}

func (c *MachineConfig) applyDefaults() {
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.Logger == nil {
		c.Logger = logging.NopLogger()
	}
	if c.Polling.MaxAttempts == 0 {
		c.Polling = DefaultPollerConfig()
	}
	if c.TypingShowDelay == 0 {
		c.TypingShowDelay = 800 * time.Millisecond
	}
	if c.TypingHideDebounce == 0 {
		c.TypingHideDebounce = 150 * time.Millisecond
	}
	if c.SummaryStepInterval == 0 {
		c.SummaryStepInterval = time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 15 * time.Second
	}
}

// Snapshot is an immutable view of the session for rendering. Messages is
// the merged transcript in display order.
type Snapshot struct {
	DebateID         string
	Topic            string
	PartyID          string
	PartyName        string
	Status           Status
	Messages         []Message
	RoundCount       int
	MaxRounds        int
	MaxRoundsReached bool
	TypingActive     bool
	TypingHint       bool
	SummaryStep      int
	SummaryTotal     int
	SummaryLabel     string
	Summary          *Summary
	Err              error
}

// Machine is the debate session state machine. It owns the transcript
// overlay, typing indicator, reply poller, and summary animation, and is
// the only component allowed to change the session status.
//
// One Machine serves one open session. All exported methods are safe for
// concurrent use.
type Machine struct {
	cfg MachineConfig
	log *logging.Logger

	transcript *Transcript
	typing     *TypingIndicator
	progress   *ProgressDriver

	mu             sync.Mutex
	session        *Session
	status         Status
	maxRounds      int
	lastErr        error
	typingHint     bool
	closed         bool
	generation     uint64
	poller         *Poller
	showTimer      Timer
	pendingSummary *Summary

	// async dispatches backend calls; tests replace it to run inline.
	async func(func())
}

// NewMachine creates an idle session machine. Call Load to fetch the
// debate and enter the session.
func NewMachine(cfg MachineConfig) *Machine {
	cfg.applyDefaults()
	m := &Machine{
		cfg:        cfg,
		log:        cfg.Logger.WithComponent("machine"),
		transcript: NewTranscript(),
		status:     StatusIdle,
		maxRounds:  6,
		async:      func(f func()) { go f() },
	}
	m.typing = NewTypingIndicator(m.transcript, cfg.Clock, cfg.TypingHideDebounce, m.publishTranscript)
	m.progress = NewProgressDriver(cfg.Clock, cfg.SummaryStepInterval, m.onSummaryStep)
	return m
}

// Load fetches the debate, runs the ownership check, seeds the transcript,
// and enters the appropriate state. It blocks until the fetch resolves; the
// TUI runs it in a command goroutine.
func (m *Machine) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.NewDebateError("load", errors.ErrSessionClosed)
	}
	prev := m.status
	m.status = StatusLoadingDebate
	m.lastErr = nil
	m.mu.Unlock()
	m.publishStatus(prev, StatusLoadingDebate)

	ctx, cancel := context.WithTimeout(ctx, m.cfg.RequestTimeout)
	defer cancel()
	session, err := m.cfg.Backend.GetDebate(ctx, m.cfg.Ref)
	if err == nil && !m.ownsDebate(session) {
		err = errors.NewDebateError("open debate", errors.ErrNotOwner).
			WithDebateID(session.ID)
	}
	if err != nil {
		m.mu.Lock()
		m.status = StatusIdle
		m.lastErr = err
		m.mu.Unlock()
		m.log.Warn("debate load failed", "ref", m.cfg.Ref, "error", err)
		m.publishStatus(StatusLoadingDebate, StatusIdle)
		m.publishError(err)
		return err
	}

	m.mu.Lock()
	m.session = session
	if session.MaxRounds > 0 {
		m.maxRounds = session.MaxRounds
	}
	var next Status
	if session.Completed {
		next = StatusCompleted
		m.transcript.Clear()
	} else {
		m.transcript.SeedFromServer(session.Messages)
		next = m.derivedActiveStatusLocked()
	}
	m.status = next
	m.mu.Unlock()

	m.log.Info("debate loaded",
		"debate_id", session.ID,
		"messages", len(session.Messages),
		"completed", session.Completed)
	m.publishTranscript()
	m.publishStatus(StatusLoadingDebate, next)
	return nil
}

// SendMessage optimistically appends content as a provisional user message
// and dispatches it to the backend. Illegal sends (wrong state, round limit
// reached, a send already in flight, empty content) are rejected without
// side effects.
func (m *Machine) SendMessage(content string) error {
	content = strings.TrimSpace(content)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.NewDebateError("send message", errors.ErrSessionClosed)
	}
	if m.status == StatusCompleted {
		m.mu.Unlock()
		return errors.NewDebateError("send message", errors.ErrDebateCompleted)
	}
	if !m.status.CanSend() {
		status := m.status
		m.mu.Unlock()
		m.log.Debug("send rejected", "status", string(status))
		return errors.NewDebateError("send message", errors.ErrInvalidTransition).
			WithStatus(string(status))
	}
	if m.transcript.RoundCount() >= m.maxRounds {
		m.mu.Unlock()
		return errors.NewDebateError("send message", errors.ErrMaxRoundsReached)
	}
	if m.transcript.HasPendingSend() {
		m.mu.Unlock()
		return errors.NewDebateError("send message", errors.ErrSendInFlight)
	}
	if content == "" {
		m.mu.Unlock()
		return errors.NewValidationError("message must not be empty").WithField("content")
	}

	provisional := m.transcript.AppendProvisionalUser(content, m.cfg.Clock.Now())
	prev := m.status
	m.status = StatusSendingMessage
	m.lastErr = nil
	gen := m.generation
	m.mu.Unlock()

	m.publishTranscript()
	m.publishStatus(prev, StatusSendingMessage)
	m.async(func() { m.dispatchSend(gen, provisional, content) })
	return nil
}

func (m *Machine) dispatchSend(gen uint64, provisional Message, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.RequestTimeout)
	defer cancel()
	confirmed, err := m.cfg.Backend.SendMessage(ctx, m.cfg.Ref, content)

	m.mu.Lock()
	if m.closed || gen != m.generation {
		m.mu.Unlock()
		return
	}

	if err != nil {
		m.transcript.MarkProvisionalFailed(provisional.ID)
		m.lastErr = err
		m.status = StatusActive
		m.mu.Unlock()
		m.log.Warn("send failed", "error", err)
		m.publishTranscript()
		m.publishStatus(StatusSendingMessage, StatusActive)
		m.publishError(err)
		return
	}

	m.transcript.ResolveProvisionalUser(provisional.ID, confirmed)
	m.status = StatusWaitingForBot
	baseline := m.transcript.RealCount()
	m.poller = NewPoller(m.cfg.Clock, m.cfg.Polling, m.log)
	m.poller.Start(baseline, m.fetchMessages, m.replyHandler(gen), m.exhaustedHandler(gen))
	m.showTimer = m.cfg.Clock.AfterFunc(m.cfg.TypingShowDelay, m.typingShowHandler(gen))
	m.mu.Unlock()

	m.publishTranscript()
	m.publishStatus(StatusSendingMessage, StatusWaitingForBot)
}

// fetchMessages is the poller's fetch function.
func (m *Machine) fetchMessages() ([]Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.RequestTimeout)
	defer cancel()
	session, err := m.cfg.Backend.GetDebate(ctx, m.cfg.Ref)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

func (m *Machine) typingShowHandler(gen uint64) func() {
	return func() {
		m.mu.Lock()
		show := !m.closed && gen == m.generation && m.status == StatusWaitingForBot
		m.mu.Unlock()
		if show {
			m.typing.Show()
		}
	}
}

func (m *Machine) replyHandler(gen uint64) func(Message, []Message) {
	return func(reply Message, server []Message) {
		m.mu.Lock()
		if m.closed || gen != m.generation {
			m.mu.Unlock()
			return
		}
		m.stopShowTimerLocked()
		m.transcript.AppendAssistant(reply)
		if m.session != nil {
			m.session.Messages = server
		}
		prev := m.status
		next := m.derivedActiveStatusLocked()
		m.status = next
		m.mu.Unlock()

		m.typing.ForceClear()
		m.log.Info("assistant reply received", "message_id", reply.ID)
		m.publishTranscript()
		m.publishStatus(prev, next)
	}
}

func (m *Machine) exhaustedHandler(gen uint64) func() {
	return func() {
		m.mu.Lock()
		if m.closed || gen != m.generation {
			m.mu.Unlock()
			return
		}
		m.stopShowTimerLocked()
		err := errors.NewDebateError("waiting for reply", errors.ErrPollBudgetExhausted).
			WithRetryable(true).
			WithSeverity(errors.SeverityWarning)
		m.lastErr = err
		prev := m.status
		m.status = StatusActive
		m.mu.Unlock()

		m.typing.ForceClear()
		m.publishStatus(prev, StatusActive)
		m.publishError(err)
	}
}

// EndDebate stops all in-flight work, clears the transcript, and requests
// the adjudication summary. On failure the transcript and state are
// restored so the user can retry; on success the session completes once
// the animation reaches its final step.
func (m *Machine) EndDebate() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.NewDebateError("end debate", errors.ErrSessionClosed)
	}
	if m.status == StatusCompleted || m.status == StatusGeneratingSummary {
		status := m.status
		m.mu.Unlock()
		return errors.NewDebateError("end debate", errors.ErrInvalidTransition).
			WithStatus(string(status))
	}
	if !m.status.CanEnd() {
		status := m.status
		m.mu.Unlock()
		return errors.NewDebateError("end debate", errors.ErrInvalidTransition).
			WithStatus(string(status))
	}

	m.generation++
	gen := m.generation
	m.stopPollerLocked()
	m.stopShowTimerLocked()
	saved := confirmedOnly(m.transcript.Messages())
	m.transcript.Clear()
	prev := m.status
	m.status = StatusGeneratingSummary
	m.lastErr = nil
	m.mu.Unlock()

	m.typing.ForceClear()
	m.publishTranscript()
	m.publishStatus(prev, StatusGeneratingSummary)
	m.progress.Start()
	m.async(func() { m.dispatchEnd(gen, saved) })
	return nil
}

func (m *Machine) dispatchEnd(gen uint64, saved []Message) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.RequestTimeout)
	defer cancel()
	summary, err := m.cfg.Backend.EndDebate(ctx, m.cfg.Ref)

	m.mu.Lock()
	if m.closed || gen != m.generation {
		m.mu.Unlock()
		return
	}

	if err != nil {
		m.progress.Reset()
		m.transcript.SeedFromServer(saved)
		m.lastErr = err
		prev := m.status
		next := m.derivedActiveStatusLocked()
		m.status = next
		m.mu.Unlock()
		m.log.Warn("end debate failed", "error", err)
		m.publishTranscript()
		m.publishStatus(prev, next)
		m.publishError(err)
		return
	}

	m.pendingSummary = summary
	final := m.progress.AtFinalStep()
	m.mu.Unlock()
	if final {
		m.finalize(gen)
	}
	// Otherwise onSummaryStep finalizes when the animation lands on the
	// last step.
}

// onSummaryStep is the progress driver's advance callback.
func (m *Machine) onSummaryStep(step int) {
	m.mu.Lock()
	id := m.debateIDLocked()
	gen := m.generation
	pending := m.pendingSummary != nil && m.status == StatusGeneratingSummary
	m.mu.Unlock()

	m.cfg.Bus.Publish(event.NewSummaryStepEvent(id, step, m.progress.Total(), Label(step)))
	if step >= m.progress.Total() && pending {
		m.finalize(gen)
	}
}

// finalize attaches the pending summary and completes the session.
func (m *Machine) finalize(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.generation || m.pendingSummary == nil || m.status != StatusGeneratingSummary {
		m.mu.Unlock()
		return
	}
	summary := m.pendingSummary
	m.pendingSummary = nil
	if m.session != nil {
		m.session.Summary = summary
		m.session.Completed = true
	}
	prev := m.status
	m.status = StatusCompleted
	id := m.debateIDLocked()
	m.mu.Unlock()

	m.progress.Stop()
	m.log.Info("debate completed", "debate_id", id)
	m.cfg.Bus.Publish(event.NewSummaryReadyEvent(id))
	m.publishStatus(prev, StatusCompleted)
}

// ExtendRounds raises the round limit and returns the session to active.
// Only legal in the final-round state; the new limit must exceed the
// current one.
func (m *Machine) ExtendRounds(newMax int) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.NewDebateError("extend rounds", errors.ErrSessionClosed)
	}
	if m.status != StatusFinalRound {
		status := m.status
		m.mu.Unlock()
		return errors.NewDebateError("extend rounds", errors.ErrInvalidTransition).
			WithStatus(string(status))
	}
	if newMax <= m.maxRounds {
		m.mu.Unlock()
		return errors.NewValidationError("new round limit must exceed the current limit").
			WithField("maxRounds").WithValue(newMax)
	}

	m.maxRounds = newMax
	if m.session != nil {
		m.session.MaxRounds = newMax
	}
	prev := m.status
	m.status = StatusActive
	m.mu.Unlock()

	m.log.Info("rounds extended", "max_rounds", newMax)
	m.publishStatus(prev, StatusActive)
	return nil
}

// SetTypingHint records whether the local user is composing. Purely a
// render hint; it never affects transitions.
func (m *Machine) SetTypingHint(on bool) {
	m.mu.Lock()
	m.typingHint = on
	m.mu.Unlock()
}

// ClearError dismisses the last surfaced error.
func (m *Machine) ClearError() {
	m.mu.Lock()
	m.lastErr = nil
	m.mu.Unlock()
}

// Status returns the current session status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Snapshot returns a consistent view of the session for rendering.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Status:       m.status,
		Messages:     m.transcript.Messages(),
		MaxRounds:    m.maxRounds,
		TypingActive: m.transcript.HasTyping(),
		TypingHint:   m.typingHint,
		SummaryTotal: m.progress.Total(),
		Err:          m.lastErr,
	}
	snap.SummaryStep = m.progress.Step()
	snap.SummaryLabel = Label(snap.SummaryStep)
	if m.session != nil {
		snap.DebateID = m.session.ID
		snap.Topic = m.session.Topic
		snap.PartyID = m.session.PartyID
		snap.PartyName = m.session.PartyName
		snap.Summary = m.session.Summary
	}
	if m.status == StatusCompleted && m.session != nil {
		snap.RoundCount = RoundCount(m.session.Messages)
	} else {
		snap.RoundCount = RoundCount(snap.Messages)
	}
	snap.MaxRoundsReached = snap.RoundCount >= snap.MaxRounds
	return snap
}

// Close tears the session down: timers stopped, poller cancelled, typing
// placeholder cleared. Late callbacks from cancelled work are suppressed.
// Idempotent.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.generation++
	m.stopPollerLocked()
	m.stopShowTimerLocked()
	m.mu.Unlock()

	m.progress.Stop()
	m.typing.ForceClear()
	m.log.Debug("session closed")
}

func (m *Machine) ownsDebate(session *Session) bool {
	if m.cfg.IsAdmin || m.cfg.UserID == "" || session.UserID == "" {
		return true
	}
	return session.UserID == m.cfg.UserID
}

// derivedActiveStatusLocked picks active or finalRound from the round count.
func (m *Machine) derivedActiveStatusLocked() Status {
	if m.transcript.RoundCount() >= m.maxRounds {
		return StatusFinalRound
	}
	return StatusActive
}

func (m *Machine) stopPollerLocked() {
	if m.poller != nil {
		m.poller.Stop()
		m.poller = nil
	}
}

func (m *Machine) stopShowTimerLocked() {
	if m.showTimer != nil {
		m.showTimer.Stop()
		m.showTimer = nil
	}
}

func (m *Machine) debateIDLocked() string {
	if m.session != nil {
		return m.session.ID
	}
	return m.cfg.Ref
}

func (m *Machine) debateID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debateIDLocked()
}

func (m *Machine) publishStatus(prev, current Status) {
	m.cfg.Bus.Publish(event.NewStatusChangedEvent(m.debateID(), string(prev), string(current)))
}

func (m *Machine) publishTranscript() {
	m.cfg.Bus.Publish(event.NewTranscriptChangedEvent(m.debateID(), m.transcript.Len()))
}

func (m *Machine) publishError(err error) {
	m.cfg.Bus.Publish(event.NewSessionErrorEvent(m.debateID(), err.Error(), errors.IsRetryable(err)))
}

// confirmedOnly filters synthetic entries out of a transcript snapshot.
func confirmedOnly(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.IsSynthetic() {
			out = append(out, m)
		}
	}
	return out
}
