package event

import (
	"time"

	"github.com/filetalk/filetalk/internal/message"
)

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "record.delivered").
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
// Record Events
// -----------------------------------------------------------------------------

// RecordDeliveredEvent is emitted after a poller delivers a record to its
// subscriber.
type RecordDeliveredEvent struct {
	baseEvent
	Consumer string         // Identity of the consumer whose poller delivered the record
	Record   message.Record // The delivered record
	Offset   int64          // Log offset just past the record
}

// NewRecordDeliveredEvent creates a RecordDeliveredEvent.
func NewRecordDeliveredEvent(consumer string, record message.Record, offset int64) RecordDeliveredEvent {
	return RecordDeliveredEvent{
		baseEvent: newBaseEvent("record.delivered"),
		Consumer:  consumer,
		Record:    record,
		Offset:    offset,
	}
}

// RecordSkippedEvent is emitted when the poller skips a malformed line.
// Skips are observability only; the tail continues past them.
type RecordSkippedEvent struct {
	baseEvent
	Consumer string // Identity of the consumer whose poller skipped the line
	Offset   int64  // Log offset just past the skipped line
	Reason   string // Decode failure description
}

// NewRecordSkippedEvent creates a RecordSkippedEvent.
func NewRecordSkippedEvent(consumer string, offset int64, reason string) RecordSkippedEvent {
	return RecordSkippedEvent{
		baseEvent: newBaseEvent("record.skipped"),
		Consumer:  consumer,
		Offset:    offset,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Presence Events
// -----------------------------------------------------------------------------

// PresenceChangedEvent is emitted when a join or leave record is delivered.
type PresenceChangedEvent struct {
	baseEvent
	Nick   string // Participant whose presence changed
	Joined bool   // True for join, false for leave
}

// NewPresenceChangedEvent creates a PresenceChangedEvent.
func NewPresenceChangedEvent(nick string, joined bool) PresenceChangedEvent {
	return PresenceChangedEvent{
		baseEvent: newBaseEvent("presence.changed"),
		Nick:      nick,
		Joined:    joined,
	}
}

// -----------------------------------------------------------------------------
// Poller Events
// -----------------------------------------------------------------------------

// PollerStateEvent is emitted when a poller changes state.
type PollerStateEvent struct {
	baseEvent
	Consumer string // Identity of the consumer that owns the poller
	State    string // New state name (idle, reading, delivering, stopped)
}

// NewPollerStateEvent creates a PollerStateEvent.
func NewPollerStateEvent(consumer, state string) PollerStateEvent {
	return PollerStateEvent{
		baseEvent: newBaseEvent("poller.state"),
		Consumer:  consumer,
		State:     state,
	}
}
