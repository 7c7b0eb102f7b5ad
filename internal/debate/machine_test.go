package debate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rostra-dev/rostra/internal/errors"
	"github.com/rostra-dev/rostra/internal/event"
)

// scriptedBackend counts calls and delegates to per-method scripts. Call
// numbers are 1-based.
type scriptedBackend struct {
	mu        sync.Mutex
	getFn     func(call int) (*Session, error)
	sendFn    func(call int, content string) (Message, error)
	endFn     func(call int) (*Summary, error)
	getCalls  int
	sendCalls int
	endCalls  int
}

func (b *scriptedBackend) GetDebate(_ context.Context, _ string) (*Session, error) {
	b.mu.Lock()
	b.getCalls++
	call := b.getCalls
	fn := b.getFn
	b.mu.Unlock()
	if fn == nil {
		return nil, errTestNetwork
	}
	return fn(call)
}

func (b *scriptedBackend) SendMessage(_ context.Context, _ string, content string) (Message, error) {
	b.mu.Lock()
	b.sendCalls++
	call := b.sendCalls
	fn := b.sendFn
	b.mu.Unlock()
	if fn == nil {
		return Message{}, errTestNetwork
	}
	return fn(call, content)
}

func (b *scriptedBackend) EndDebate(_ context.Context, _ string) (*Summary, error) {
	b.mu.Lock()
	b.endCalls++
	call := b.endCalls
	fn := b.endFn
	b.mu.Unlock()
	if fn == nil {
		return nil, errTestNetwork
	}
	return fn(call)
}

func activeSession(maxRounds int, msgs ...Message) *Session {
	return &Session{
		ID:        "42",
		UserID:    "u1",
		PartyID:   "p7",
		PartyName: "Unity Party",
		Topic:     "public transit funding",
		Messages:  msgs,
		MaxRounds: maxRounds,
	}
}

func testSummary() *Summary {
	return &Summary{
		PartyArguments:   []string{"investment pays off"},
		CitizenArguments: []string{"costs are understated"},
		KeyPoints: []KeyPoint{
			{Point: "funding", PartyPosition: "raise it", CitizenPosition: "audit first"},
		},
		Conclusion: &Conclusion{Outcome: OutcomeBalanced, Reasoning: "both sides landed points"},
	}
}

func newTestMachine(t *testing.T, backend Backend, mutate func(*MachineConfig)) (*Machine, *fakeClock, *event.Bus) {
	t.Helper()
	clock := newFakeClock()
	bus := event.NewBus()
	cfg := MachineConfig{
		Ref:                 "42",
		Backend:             backend,
		Bus:                 bus,
		Clock:               clock,
		UserID:              "u1",
		Polling:             testPollerConfig(),
		TypingShowDelay:     800 * time.Millisecond,
		TypingHideDebounce:  150 * time.Millisecond,
		SummaryStepInterval: time.Second,
		RequestTimeout:      15 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m := NewMachine(cfg)
	m.async = func(f func()) { f() }
	t.Cleanup(m.Close)
	return m, clock, bus
}

func mustLoad(t *testing.T, m *Machine) {
	t.Helper()
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestMachine_LoadEntersActive(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) {
			return activeSession(6,
				serverMessage("m1", RoleUser, "opening"),
				serverMessage("m2", RoleAssistant, "rebuttal"),
			), nil
		},
	}
	m, _, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	snap := m.Snapshot()
	if snap.Status != StatusActive {
		t.Errorf("Status = %q, want active", snap.Status)
	}
	if len(snap.Messages) != 2 {
		t.Errorf("Messages len = %d, want 2", len(snap.Messages))
	}
	if snap.RoundCount != 1 {
		t.Errorf("RoundCount = %d, want 1", snap.RoundCount)
	}
	if snap.Topic != "public transit funding" {
		t.Errorf("Topic = %q", snap.Topic)
	}
}

func TestMachine_LoadCompletedDebate(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) {
			s := activeSession(6,
				serverMessage("m1", RoleUser, "opening"),
				serverMessage("m2", RoleAssistant, "rebuttal"),
			)
			s.Completed = true
			s.Summary = testSummary()
			return s, nil
		},
	}
	m, _, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	snap := m.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("Status = %q, want completed", snap.Status)
	}
	if len(snap.Messages) != 0 {
		t.Errorf("transcript has %d entries for a completed debate, want 0", len(snap.Messages))
	}
	if snap.Summary == nil {
		t.Fatal("Summary = nil for a completed debate")
	}
	if snap.RoundCount != 1 {
		t.Errorf("RoundCount = %d, want 1 derived from server messages", snap.RoundCount)
	}

	if err := m.SendMessage("too late"); !errors.Is(err, errors.ErrDebateCompleted) {
		t.Errorf("SendMessage on completed = %v, want ErrDebateCompleted", err)
	}
	if err := m.EndDebate(); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Errorf("EndDebate on completed = %v, want ErrInvalidTransition", err)
	}
}

func TestMachine_LoadRejectsForeignDebate(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) {
			s := activeSession(6)
			s.UserID = "someone-else"
			return s, nil
		},
	}
	m, _, _ := newTestMachine(t, backend, nil)

	err := m.Load(context.Background())
	if !errors.Is(err, errors.ErrNotOwner) {
		t.Fatalf("Load() error = %v, want ErrNotOwner", err)
	}
	if !errors.IsAuthorization(err) {
		t.Error("IsAuthorization() = false for ownership failure")
	}
	if m.Status() != StatusIdle {
		t.Errorf("Status = %q after rejected load, want idle", m.Status())
	}
}

func TestMachine_AdminBypassesOwnership(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) {
			s := activeSession(6)
			s.UserID = "someone-else"
			return s, nil
		},
	}
	m, _, _ := newTestMachine(t, backend, func(cfg *MachineConfig) { cfg.IsAdmin = true })
	mustLoad(t, m)
	if m.Status() != StatusActive {
		t.Errorf("Status = %q, want active for admin", m.Status())
	}
}

func TestMachine_SendAndReceiveReply(t *testing.T) {
	confirmed := serverMessage("m1", RoleUser, "my opening point")
	reply := serverMessage("m2", RoleAssistant, "the party disagrees")

	backend := &scriptedBackend{}
	backend.getFn = func(call int) (*Session, error) {
		if call == 1 {
			return activeSession(6), nil
		}
		if call < 4 {
			// First polls: reply not persisted yet.
			return activeSession(6, confirmed), nil
		}
		return activeSession(6, confirmed, reply), nil
	}
	var duringSend Snapshot
	m, clock, _ := newTestMachine(t, backend, nil)
	backend.sendFn = func(_ int, content string) (Message, error) {
		duringSend = m.Snapshot()
		if content != "my opening point" {
			t.Errorf("backend received content %q", content)
		}
		return confirmed, nil
	}
	mustLoad(t, m)

	if err := m.SendMessage("  my opening point  "); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	// While the send was in flight the provisional message was visible.
	if duringSend.Status != StatusSendingMessage {
		t.Errorf("status during send = %q, want sendingMessage", duringSend.Status)
	}
	if len(duringSend.Messages) != 1 || !duringSend.Messages[0].IsProvisional() {
		t.Errorf("in-flight transcript = %v, want one provisional entry", duringSend.Messages)
	}

	snap := m.Snapshot()
	if snap.Status != StatusWaitingForBot {
		t.Fatalf("Status = %q after send, want waitingForBot", snap.Status)
	}
	if snap.Messages[0].ID != "m1" {
		t.Errorf("provisional not resolved in place: %v", snap.Messages[0])
	}

	// Typing placeholder appears after the show delay.
	clock.Advance(800 * time.Millisecond)
	snap = m.Snapshot()
	if !snap.TypingActive {
		t.Error("typing placeholder not shown after show delay")
	}

	// Polls at 1s and 2s see no reply; the poll at 3s extracts it.
	clock.Advance(3 * time.Second)
	snap = m.Snapshot()
	if snap.Status != StatusActive {
		t.Errorf("Status = %q after reply, want active", snap.Status)
	}
	if snap.TypingActive {
		t.Error("typing placeholder survived the reply")
	}
	if len(snap.Messages) != 2 || snap.Messages[1].ID != "m2" {
		t.Errorf("Messages = %v, want [m1 m2]", snap.Messages)
	}
	if snap.RoundCount != 1 {
		t.Errorf("RoundCount = %d, want 1", snap.RoundCount)
	}
}

func TestMachine_SendGuards(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) { return activeSession(6), nil },
	}
	m, _, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	if err := m.SendMessage("   "); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("empty send = %v, want ErrInvalidInput", err)
	}

	// Defer the dispatch so the in-flight window is observable.
	var pending []func()
	m.async = func(f func()) { pending = append(pending, f) }
	if err := m.SendMessage("first"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if err := m.SendMessage("second"); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Errorf("send while sending = %v, want ErrInvalidTransition", err)
	}
	if len(pending) != 1 {
		t.Fatalf("dispatched %d sends, want 1", len(pending))
	}
}

func TestMachine_SendFailureMarksProvisionalAndAllowsRetry(t *testing.T) {
	confirmed := serverMessage("m1", RoleUser, "take two")
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) { return activeSession(6), nil },
		sendFn: func(call int, _ string) (Message, error) {
			if call == 1 {
				return Message{}, errTestNetwork
			}
			return confirmed, nil
		},
	}
	m, _, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	if err := m.SendMessage("take one"); err != nil {
		t.Fatalf("SendMessage() error = %v (failure surfaces via snapshot)", err)
	}

	snap := m.Snapshot()
	if snap.Status != StatusActive {
		t.Errorf("Status = %q after failed send, want active", snap.Status)
	}
	if snap.Err == nil {
		t.Error("Snapshot.Err = nil after failed send")
	}
	if got := snap.Messages[0].Content; !strings.HasSuffix(got, FailedSendMarker) {
		t.Errorf("failed provisional content = %q, want failure marker suffix", got)
	}

	// The failed entry must not block a retry.
	if err := m.SendMessage("take two"); err != nil {
		t.Fatalf("retry SendMessage() error = %v", err)
	}
	snap = m.Snapshot()
	if snap.Status != StatusWaitingForBot {
		t.Errorf("Status = %q after retry, want waitingForBot", snap.Status)
	}
	if snap.Messages[1].ID != "m1" {
		t.Errorf("retry not resolved in place: %v", snap.Messages)
	}
}

func TestMachine_PollBudgetExhaustion(t *testing.T) {
	confirmed := serverMessage("m1", RoleUser, "anyone there?")
	backend := &scriptedBackend{
		sendFn: func(int, string) (Message, error) { return confirmed, nil },
	}
	backend.getFn = func(call int) (*Session, error) {
		if call == 1 {
			return activeSession(6), nil
		}
		// The reply never lands.
		return activeSession(6, confirmed), nil
	}
	m, clock, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	if err := m.SendMessage("anyone there?"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	clock.Advance(2 * time.Minute)

	backend.mu.Lock()
	polls := backend.getCalls - 1
	backend.mu.Unlock()
	if polls != 30 {
		t.Errorf("poll fetches = %d, want exactly 30", polls)
	}

	snap := m.Snapshot()
	if snap.Status != StatusActive {
		t.Errorf("Status = %q after exhaustion, want active", snap.Status)
	}
	if !errors.Is(snap.Err, errors.ErrPollBudgetExhausted) {
		t.Errorf("Err = %v, want ErrPollBudgetExhausted", snap.Err)
	}
	if !errors.IsRetryable(snap.Err) {
		t.Error("exhaustion error should be retryable")
	}
	if snap.TypingActive {
		t.Error("typing placeholder survived exhaustion")
	}
}

func TestMachine_FinalRoundAndExtend(t *testing.T) {
	confirmed := serverMessage("m3", RoleUser, "closing argument")
	reply := serverMessage("m4", RoleAssistant, "closing rebuttal")
	history := []Message{
		serverMessage("m1", RoleUser, "opening"),
		serverMessage("m2", RoleAssistant, "rebuttal"),
	}
	backend := &scriptedBackend{
		sendFn: func(int, string) (Message, error) { return confirmed, nil },
	}
	backend.getFn = func(call int) (*Session, error) {
		if call == 1 {
			return activeSession(2, history...), nil
		}
		return activeSession(2, append(append([]Message{}, history...), confirmed, reply)...), nil
	}
	m, clock, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	if err := m.SendMessage("closing argument"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	clock.Advance(time.Second)

	snap := m.Snapshot()
	if snap.Status != StatusFinalRound {
		t.Fatalf("Status = %q at round limit, want finalRound", snap.Status)
	}
	if !snap.MaxRoundsReached {
		t.Error("MaxRoundsReached = false at the limit")
	}
	if err := m.SendMessage("one more"); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Errorf("send in finalRound = %v, want ErrInvalidTransition", err)
	}

	if err := m.ExtendRounds(2); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("ExtendRounds(2) = %v, want ErrInvalidInput", err)
	}
	if err := m.ExtendRounds(4); err != nil {
		t.Fatalf("ExtendRounds(4) error = %v", err)
	}

	snap = m.Snapshot()
	if snap.Status != StatusActive {
		t.Errorf("Status = %q after extend, want active", snap.Status)
	}
	if snap.MaxRounds != 4 || snap.MaxRoundsReached {
		t.Errorf("MaxRounds = %d, MaxRoundsReached = %v, want 4/false", snap.MaxRounds, snap.MaxRoundsReached)
	}

	// Extending again outside finalRound is rejected.
	if err := m.ExtendRounds(6); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Errorf("ExtendRounds outside finalRound = %v, want ErrInvalidTransition", err)
	}
}

func TestMachine_EndDebateCompletesAfterAnimation(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) {
			return activeSession(6,
				serverMessage("m1", RoleUser, "opening"),
				serverMessage("m2", RoleAssistant, "rebuttal"),
			), nil
		},
		endFn: func(int) (*Summary, error) { return testSummary(), nil },
	}
	m, clock, bus := newTestMachine(t, backend, nil)

	var ready int
	bus.Subscribe("debate.summary_ready", func(event.Event) { ready++ })

	mustLoad(t, m)
	if err := m.EndDebate(); err != nil {
		t.Fatalf("EndDebate() error = %v", err)
	}

	// The transcript clears immediately and the animation starts at step 1,
	// even though the API has already resolved.
	snap := m.Snapshot()
	if snap.Status != StatusGeneratingSummary {
		t.Fatalf("Status = %q, want generatingSummary", snap.Status)
	}
	if len(snap.Messages) != 0 {
		t.Errorf("transcript has %d entries during generation, want 0", len(snap.Messages))
	}
	if snap.SummaryStep != 1 {
		t.Errorf("SummaryStep = %d, want 1", snap.SummaryStep)
	}
	if ready != 0 {
		t.Error("summary_ready fired before the animation finished")
	}

	clock.Advance(2 * time.Second)
	if m.Status() != StatusGeneratingSummary {
		t.Errorf("Status = %q mid-animation, want generatingSummary", m.Status())
	}

	clock.Advance(time.Second)
	snap = m.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("Status = %q after animation, want completed", snap.Status)
	}
	if snap.Summary == nil {
		t.Error("Summary = nil after completion")
	}
	if ready != 1 {
		t.Errorf("summary_ready fired %d times, want 1", ready)
	}
	if len(snap.Messages) != 0 {
		t.Error("transcript not empty after completion")
	}
}

func TestMachine_EndDebateSlowAPI(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) { return activeSession(6), nil },
		endFn: func(int) (*Summary, error) { return testSummary(), nil },
	}
	m, clock, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	// Hold the API call back until after the animation has finished.
	var pending []func()
	m.async = func(f func()) { pending = append(pending, f) }
	if err := m.EndDebate(); err != nil {
		t.Fatalf("EndDebate() error = %v", err)
	}

	clock.Advance(10 * time.Second)
	if m.Status() != StatusGeneratingSummary {
		t.Fatalf("Status = %q while API pending, want generatingSummary (animation holds)", m.Status())
	}
	if step := m.Snapshot().SummaryStep; step != 4 {
		t.Errorf("SummaryStep = %d while holding, want 4", step)
	}

	for _, f := range pending {
		f()
	}
	if m.Status() != StatusCompleted {
		t.Errorf("Status = %q after late API resolution, want completed", m.Status())
	}
}

func TestMachine_EndDebateFailureRestoresTranscript(t *testing.T) {
	history := []Message{
		serverMessage("m1", RoleUser, "opening"),
		serverMessage("m2", RoleAssistant, "rebuttal"),
	}
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) { return activeSession(6, history...), nil },
		endFn: func(int) (*Summary, error) { return nil, errTestNetwork },
	}
	m, _, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	if err := m.EndDebate(); err != nil {
		t.Fatalf("EndDebate() error = %v (failure surfaces via snapshot)", err)
	}

	snap := m.Snapshot()
	if snap.Status != StatusActive {
		t.Errorf("Status = %q after failed end, want active", snap.Status)
	}
	if snap.Err == nil {
		t.Error("Snapshot.Err = nil after failed end")
	}
	if len(snap.Messages) != 2 {
		t.Errorf("transcript len = %d after failed end, want 2 restored", len(snap.Messages))
	}
	if snap.SummaryStep != 0 {
		t.Errorf("SummaryStep = %d after failed end, want 0", snap.SummaryStep)
	}

	// The session remains usable; ending again can still succeed.
	backend.mu.Lock()
	backend.endFn = func(int) (*Summary, error) { return testSummary(), nil }
	backend.mu.Unlock()
	if err := m.EndDebate(); err != nil {
		t.Fatalf("second EndDebate() error = %v", err)
	}
}

func TestMachine_EndDebateCancelsInFlightSend(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) { return activeSession(6), nil },
		endFn: func(int) (*Summary, error) { return testSummary(), nil },
		sendFn: func(int, string) (Message, error) {
			return serverMessage("m1", RoleUser, "late"), nil
		},
	}
	m, clock, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	var pending []func()
	m.async = func(f func()) { pending = append(pending, f) }
	if err := m.SendMessage("late"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	m.async = func(f func()) { f() }
	if err := m.EndDebate(); err != nil {
		t.Fatalf("EndDebate() error = %v", err)
	}

	// The stale send resolution lands after the end and must be ignored.
	for _, f := range pending {
		f()
	}
	clock.Advance(5 * time.Second)

	snap := m.Snapshot()
	if snap.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", snap.Status)
	}
	if len(snap.Messages) != 0 {
		t.Errorf("stale send mutated the cleared transcript: %v", snap.Messages)
	}
}

func TestMachine_StatusEventSequence(t *testing.T) {
	confirmed := serverMessage("m1", RoleUser, "point")
	reply := serverMessage("m2", RoleAssistant, "counterpoint")
	backend := &scriptedBackend{
		sendFn: func(int, string) (Message, error) { return confirmed, nil },
	}
	backend.getFn = func(call int) (*Session, error) {
		if call == 1 {
			return activeSession(6), nil
		}
		return activeSession(6, confirmed, reply), nil
	}
	m, clock, bus := newTestMachine(t, backend, nil)

	var transitions []string
	bus.Subscribe("debate.status_changed", func(e event.Event) {
		sc := e.(event.StatusChangedEvent)
		transitions = append(transitions, sc.Current)
	})

	mustLoad(t, m)
	if err := m.SendMessage("point"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	clock.Advance(time.Second)

	want := []string{"loadingDebate", "active", "sendingMessage", "waitingForBot", "active"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", transitions, want)
		}
	}
}

func TestMachine_CloseSuppressesLateWork(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) { return activeSession(6), nil },
		sendFn: func(int, string) (Message, error) {
			return serverMessage("m1", RoleUser, "late"), nil
		},
	}
	m, clock, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	var pending []func()
	m.async = func(f func()) { pending = append(pending, f) }
	if err := m.SendMessage("late"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	m.Close()
	for _, f := range pending {
		f()
	}
	clock.Advance(time.Minute)

	snap := m.Snapshot()
	if len(snap.Messages) != 1 || !snap.Messages[0].IsProvisional() {
		t.Errorf("late send resolution mutated a closed session: %v", snap.Messages)
	}
	if err := m.SendMessage("again"); !errors.Is(err, errors.ErrSessionClosed) {
		t.Errorf("SendMessage after Close = %v, want ErrSessionClosed", err)
	}
	if err := m.EndDebate(); !errors.Is(err, errors.ErrSessionClosed) {
		t.Errorf("EndDebate after Close = %v, want ErrSessionClosed", err)
	}

	m.Close()
}

func TestMachine_TypingHint(t *testing.T) {
	backend := &scriptedBackend{
		getFn: func(int) (*Session, error) { return activeSession(6), nil },
	}
	m, _, _ := newTestMachine(t, backend, nil)
	mustLoad(t, m)

	m.SetTypingHint(true)
	if !m.Snapshot().TypingHint {
		t.Error("TypingHint = false after SetTypingHint(true)")
	}
	m.SetTypingHint(false)
	if m.Snapshot().TypingHint {
		t.Error("TypingHint = true after SetTypingHint(false)")
	}
	if m.Status() != StatusActive {
		t.Error("typing hint changed the session status")
	}
}
