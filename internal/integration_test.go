// Package internal contains integration tests that verify the packages
// work together: the API client, the session machine, and the event bus,
// driven against a scripted HTTP backend.
package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/debate"
	"github.com/rostra-dev/rostra/internal/event"
)

// debateServer is a minimal in-memory debate backend for integration
// tests. Sending a message persists the user message and, from the next
// transcript fetch on, the assistant reply.
type debateServer struct {
	mu       sync.Mutex
	messages []debate.Message
	pending  *debate.Message
	nextID   int
}

func (s *debateServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /debates/42", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		if s.pending != nil {
			s.messages = append(s.messages, *s.pending)
			s.pending = nil
		}
		session := debate.Session{
			ID:        "42",
			UserID:    "u1",
			PartyID:   "p7",
			PartyName: "Unity Party",
			Topic:     "transit",
			MaxRounds: 6,
			Messages:  append([]debate.Message{}, s.messages...),
		}
		s.mu.Unlock()
		json.NewEncoder(w).Encode(session)
	})
	mux.HandleFunc("POST /debates/42/messages", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		s.mu.Lock()
		s.nextID++
		confirmed := debate.Message{
			ID: "m" + strconv.Itoa(s.nextID), Role: debate.RoleUser, Content: req.Content,
		}
		s.messages = append(s.messages, confirmed)
		s.nextID++
		reply := debate.Message{
			ID: "m" + strconv.Itoa(s.nextID), Role: debate.RoleAssistant,
			Content: "the party rejects: " + req.Content,
		}
		s.pending = &reply
		s.mu.Unlock()
		json.NewEncoder(w).Encode(confirmed)
	})
	mux.HandleFunc("POST /debates/42/end", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(debate.Summary{
			PartyArguments:   []string{"a"},
			CitizenArguments: []string{"b"},
			Conclusion:       &debate.Conclusion{Outcome: debate.OutcomeBalanced, Reasoning: "even"},
		})
	})
	return mux
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// TestDebateSessionIntegration runs a full round trip: load, send, poll
// for the reply, end the debate, and complete with a summary. Real
// goroutines and timers are used, shrunk to test scale.
func TestDebateSessionIntegration(t *testing.T) {
	srv := httptest.NewServer((&debateServer{}).handler())
	defer srv.Close()

	client := api.NewClient(srv.URL, "test-token", 2*time.Second, nil)
	bus := event.NewBus()

	var mu sync.Mutex
	var eventTypes []string
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		eventTypes = append(eventTypes, e.EventType())
		mu.Unlock()
	})

	machine := debate.NewMachine(debate.MachineConfig{
		Ref:     "42",
		Backend: client,
		Bus:     bus,
		UserID:  "u1",
		Polling: debate.PollerConfig{
			MaxAttempts:     30,
			FixedAttempts:   5,
			InitialInterval: 10 * time.Millisecond,
			BackoffFactor:   1.2,
			MaxInterval:     30 * time.Millisecond,
		},
		TypingShowDelay:     5 * time.Millisecond,
		TypingHideDebounce:  5 * time.Millisecond,
		SummaryStepInterval: 10 * time.Millisecond,
		RequestTimeout:      2 * time.Second,
	})
	defer machine.Close()

	if err := machine.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if machine.Status() != debate.StatusActive {
		t.Fatalf("Status = %q after load, want active", machine.Status())
	}

	if err := machine.SendMessage("transit should be free"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	waitFor(t, func() bool {
		snap := machine.Snapshot()
		return snap.Status == debate.StatusActive && len(snap.Messages) == 2
	}, "assistant reply")

	snap := machine.Snapshot()
	if snap.Messages[0].IsProvisional() {
		t.Error("user message not resolved to its server record")
	}
	if snap.Messages[1].Role != debate.RoleAssistant ||
		!strings.Contains(snap.Messages[1].Content, "transit should be free") {
		t.Errorf("assistant reply = %+v", snap.Messages[1])
	}
	if snap.RoundCount != 1 {
		t.Errorf("RoundCount = %d, want 1", snap.RoundCount)
	}

	if err := machine.EndDebate(); err != nil {
		t.Fatalf("EndDebate() error = %v", err)
	}
	waitFor(t, func() bool {
		return machine.Status() == debate.StatusCompleted
	}, "completion")

	snap = machine.Snapshot()
	if snap.Summary == nil || snap.Summary.Conclusion == nil {
		t.Fatal("summary missing after completion")
	}
	if len(snap.Messages) != 0 {
		t.Errorf("transcript has %d entries after completion, want 0", len(snap.Messages))
	}

	mu.Lock()
	defer mu.Unlock()
	seen := map[string]bool{}
	for _, et := range eventTypes {
		seen[et] = true
	}
	for _, want := range []string{
		"debate.status_changed",
		"debate.transcript_changed",
		"debate.summary_step",
		"debate.summary_ready",
	} {
		if !seen[want] {
			t.Errorf("event %q never published (saw %v)", want, eventTypes)
		}
	}
}

// TestEventBusIntegration verifies the bus routes session events to both
// type-specific and wildcard subscribers in publish order.
func TestEventBusIntegration(t *testing.T) {
	bus := event.NewBus()

	var mu sync.Mutex
	var order []string
	bus.Subscribe("debate.status_changed", func(e event.Event) {
		mu.Lock()
		order = append(order, "specific:"+e.(event.StatusChangedEvent).Current)
		mu.Unlock()
	})
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		order = append(order, "wildcard:"+e.EventType())
		mu.Unlock()
	})

	bus.Publish(event.NewStatusChangedEvent("42", "idle", "loadingDebate"))
	bus.Publish(event.NewTranscriptChangedEvent("42", 3))

	mu.Lock()
	defer mu.Unlock()
	want := []string{
		"specific:loadingDebate",
		"wildcard:debate.status_changed",
		"wildcard:debate.transcript_changed",
	}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
