package realtime_test

import (
	"errors"
	"testing"
	"time"

	"vireo.social/vireo/internal/realtime"
)

func recvEvent(t *testing.T, sub *realtime.Subscription) realtime.Event {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		if !ok {
			t.Fatalf("subscription closed: %v", sub.Err())
		}
		return event
	case <-time.After(time.Second):
		t.Fatalf("no event within a second")
	}
	return realtime.Event{}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()

	first := hub.Subscribe(realtime.TableStatus, nil)
	second := hub.Subscribe(realtime.TableStatus, nil)

	hub.Publish(realtime.TableStatus, "row")

	for _, sub := range []*realtime.Subscription{first, second} {
		event := recvEvent(t, sub)
		if event.Table != realtime.TableStatus || event.Payload != "row" {
			t.Fatalf("unexpected event %+v", event)
		}
	}
}

func TestPublishScopedToTable(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()

	sub := hub.Subscribe(realtime.TableMessages, nil)
	hub.Publish(realtime.TableStatus, "status row")
	hub.Publish(realtime.TableMessages, "message row")

	if event := recvEvent(t, sub); event.Payload != "message row" {
		t.Fatalf("expected the messages-table event, got %+v", event)
	}
}

func TestSubscribePredicateFilters(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()

	sub := hub.Subscribe(realtime.TableStatus, func(e realtime.Event) bool {
		s, ok := e.Payload.(string)
		return ok && s == "wanted"
	})

	hub.Publish(realtime.TableStatus, "ignored")
	hub.Publish(realtime.TableStatus, "wanted")

	if event := recvEvent(t, sub); event.Payload != "wanted" {
		t.Fatalf("predicate let through %+v", event)
	}
}

func TestPublishPreservesOrder(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()

	sub := hub.Subscribe(realtime.TableStatus, nil)
	for i := 0; i < 10; i++ {
		hub.Publish(realtime.TableStatus, i)
	}

	for want := 0; want < 10; want++ {
		if event := recvEvent(t, sub); event.Payload != want {
			t.Fatalf("expected payload %d, got %v", want, event.Payload)
		}
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	hub := realtime.NewHub()

	sub := hub.Subscribe(realtime.TableStatus, nil)
	hub.Close()
	hub.Publish(realtime.TableStatus, "late")

	if _, ok := <-sub.Events(); ok {
		t.Fatalf("expected closed events channel")
	}
	if !errors.Is(sub.Err(), realtime.ErrHubClosed) {
		t.Fatalf("expected ErrHubClosed, got %v", sub.Err())
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	hub := realtime.NewHub()
	hub.Close()

	sub := hub.Subscribe(realtime.TableStatus, nil)
	if _, ok := <-sub.Events(); ok {
		t.Fatalf("expected an already-closed subscription")
	}
	if !errors.Is(sub.Err(), realtime.ErrHubClosed) {
		t.Fatalf("expected ErrHubClosed, got %v", sub.Err())
	}
}

func TestSubscriptionCloseUnregisters(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()

	sub := hub.Subscribe(realtime.TableStatus, nil)
	sub.Close()
	sub.Close() // second close is a no-op

	hub.Publish(realtime.TableStatus, "row")

	if _, ok := <-sub.Events(); ok {
		t.Fatalf("expected no delivery after Close")
	}
	if sub.Err() != nil {
		t.Fatalf("a deliberate Close is not an error, got %v", sub.Err())
	}
}

func TestSlowConsumerTerminated(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()

	slow := hub.Subscribe(realtime.TableStatus, nil)

	// One past the buffer overflows the undrained subscriber.
	for i := 0; i < 33; i++ {
		hub.Publish(realtime.TableStatus, i)
	}

	drained := 0
	for range slow.Events() {
		drained++
	}
	if drained != 32 {
		t.Fatalf("expected 32 buffered events before termination, got %d", drained)
	}
	if !errors.Is(slow.Err(), realtime.ErrSlowConsumer) {
		t.Fatalf("expected ErrSlowConsumer, got %v", slow.Err())
	}

	// The hub itself keeps serving later subscribers.
	fresh := hub.Subscribe(realtime.TableStatus, nil)
	hub.Publish(realtime.TableStatus, "after")
	if event := recvEvent(t, fresh); event.Payload != "after" {
		t.Fatalf("fresh subscriber missed the follow-up event, got %+v", event)
	}
}
