// Package sse streams engine change events to connected clients as
// Server-Sent Events.
package sse

import (
	"time"

	"github.com/google/uuid"

	"github.com/versemark/versemark-server/internal/event"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBookmarkAddedOrUpdated mirrors event.KindBookmarkAddedOrUpdated.
	EventBookmarkAddedOrUpdated = EventType(event.KindBookmarkAddedOrUpdated)
	// EventBookmarksDeleted mirrors event.KindBookmarksDeleted.
	EventBookmarksDeleted = EventType(event.KindBookmarksDeleted)
	// EventLabelAddedOrUpdated mirrors event.KindLabelAddedOrUpdated.
	EventLabelAddedOrUpdated = EventType(event.KindLabelAddedOrUpdated)
	// EventLabelsDeleted mirrors event.KindLabelsDeleted.
	EventLabelsDeleted = EventType(event.KindLabelsDeleted)

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// FromBusEvent wraps a bus event for the wire. The payload is the bus event
// itself, so its JSON shape is the one declared in package event.
func FromBusEvent(e event.Event) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      EventType(e.Kind()),
		Data:      e,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		ID:        uuid.NewString(),
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
