package realtime

import (
	"errors"
	"sync"
)

// Table names events by their source table, mirroring the rows the rest of
// the service persists. Cross-table ordering is not guaranteed; within one
// table events are delivered in publish order.
type Table string

const (
	TableStatus   Table = "status"
	TableMessages Table = "messages"
)

var (
	// ErrSlowConsumer terminates a subscription whose buffer overflowed. The
	// consumer must re-subscribe and reload history; there is no replay.
	ErrSlowConsumer = errors.New("realtime: subscriber too slow, events dropped")
	// ErrHubClosed terminates all subscriptions when the hub shuts down.
	ErrHubClosed = errors.New("realtime: hub closed")
)

// subscriberBuffer bounds the per-subscriber queue. A consumer that falls
// this far behind is cut off rather than growing the fan-out unboundedly.
const subscriberBuffer = 32

// Event is a single inserted row published to the bus.
type Event struct {
	Table   Table
	Payload interface{}
}

// Subscription is a live, cancellable stream of events. The Events channel is
// closed on cancellation or terminal error; Err reports why.
type Subscription struct {
	hub    *Hub
	table  Table
	id     uint64
	match  func(Event) bool
	events chan Event

	err  error
	done bool
}

func (s *Subscription) Events() <-chan Event { return s.events }

// Err returns the terminal error, if any, after Events is closed.
func (s *Subscription) Err() error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.err
}

// Close cancels the subscription and releases its resources. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.terminate(s, nil)
}

// Hub is the in-process event bus. Every insert into a watched table is
// published once; each subscription filters the shared stream with its own
// predicate.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Table]map[uint64]*Subscription
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[Table]map[uint64]*Subscription)}
}

// Subscribe registers a listener for inserts into table. match may be nil to
// receive every event for the table.
func (h *Hub) Subscribe(table Table, match func(Event) bool) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{
		hub:    h,
		table:  table,
		match:  match,
		events: make(chan Event, subscriberBuffer),
	}

	if h.closed {
		sub.done = true
		sub.err = ErrHubClosed
		close(sub.events)
		return sub
	}

	h.nextID++
	sub.id = h.nextID
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]*Subscription)
	}
	h.subs[table][sub.id] = sub
	return sub
}

// Publish fans out one inserted row to every matching subscriber. Delivery is
// fire-and-forget: a full subscriber queue terminates that subscription
// instead of blocking the publisher.
func (h *Hub) Publish(table Table, payload interface{}) {
	event := Event{Table: table, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for _, sub := range h.subs[table] {
		if sub.match != nil && !sub.match(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			h.terminate(sub, ErrSlowConsumer)
		}
	}
}

// Close shuts the bus down; every open subscription receives a terminal
// ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, subs := range h.subs {
		for _, sub := range subs {
			h.terminate(sub, ErrHubClosed)
		}
	}
}

// terminate must be called with h.mu held.
func (h *Hub) terminate(sub *Subscription, err error) {
	if sub.done {
		return
	}
	sub.done = true
	sub.err = err
	if set, ok := h.subs[sub.table]; ok {
		delete(set, sub.id)
	}
	close(sub.events)
}
