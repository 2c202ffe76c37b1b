package domain

import "time"

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventEjected   EventType = "ejected"
	EventResolved  EventType = "resolved"
	EventCancelled EventType = "cancelled"
	EventVoided    EventType = "voided"
)

// Event is a notification emitted after a successful state transition.
// Events are emitted only after the transition has been durably persisted.
type Event struct {
	Type      EventType `json:"type"`
	TokenID   string    `json:"token_id"`
	Timestamp time.Time `json:"timestamp"`

	// Value carries the resolution value for EventResolved; nil otherwise.
	Value any `json:"value,omitempty"`
}

// EventSink receives lifecycle events. Implementations must not block;
// the store invokes the sink synchronously.
type EventSink func(Event)

// NopSink discards all events. It is the store's default sink.
func NopSink(Event) {}
