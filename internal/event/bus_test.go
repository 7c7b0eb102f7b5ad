package event

import (
	"sync"
	"testing"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	var received []Event
	bus.Subscribe("debate.status_changed", func(e Event) {
		received = append(received, e)
	})

	bus.Publish(NewStatusChangedEvent("d-1", "active", "sendingMessage"))
	bus.Publish(NewTranscriptChangedEvent("d-1", 3))

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	ev, ok := received[0].(StatusChangedEvent)
	if !ok {
		t.Fatalf("expected StatusChangedEvent, got %T", received[0])
	}
	if ev.Current != "sendingMessage" {
		t.Errorf("Current = %q, want %q", ev.Current, "sendingMessage")
	}
	if ev.Timestamp().IsZero() {
		t.Error("event timestamp should be set")
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(NewStatusChangedEvent("d-1", "", "loadingDebate"))
	bus.Publish(NewSummaryStepEvent("d-1", 1, 4, "Reviewing arguments"))
	bus.Publish(NewSummaryReadyEvent("d-1"))

	if count != 3 {
		t.Errorf("wildcard handler called %d times, want 3", count)
	}
}

func TestSpecificHandlersBeforeWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard") })
	bus.Subscribe("debate.error", func(Event) { order = append(order, "specific") })

	bus.Publish(NewSessionErrorEvent("d-1", "send failed", true))

	if len(order) != 2 || order[0] != "specific" || order[1] != "wildcard" {
		t.Errorf("dispatch order = %v, want [specific wildcard]", order)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	id := bus.Subscribe("debate.transcript_changed", func(Event) { count++ })

	bus.Publish(NewTranscriptChangedEvent("d-1", 1))

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe() = false, want true")
	}
	bus.Publish(NewTranscriptChangedEvent("d-1", 2))

	if count != 1 {
		t.Errorf("handler called %d times, want 1", count)
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe() = true, want false")
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe("debate.error", func(Event) { panic("handler bug") })
	bus.Subscribe("debate.error", func(Event) { called = true })

	bus.Publish(NewSessionErrorEvent("d-1", "boom", false))

	if !called {
		t.Error("second handler should run despite first handler panicking")
	}
}

func TestClear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("a", func(Event) {})
	bus.SubscribeAll(func(Event) {})

	if bus.SubscriptionCount() != 2 {
		t.Fatalf("SubscriptionCount() = %d, want 2", bus.SubscriptionCount())
	}
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() after Clear = %d, want 0", bus.SubscriptionCount())
	}
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("debate.transcript_changed", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Publish(NewTranscriptChangedEvent("d-1", 1))
		}()
		go func() {
			defer wg.Done()
			bus.Subscribe("other", func(Event) {})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Errorf("handler called %d times, want 10", count)
	}
}
