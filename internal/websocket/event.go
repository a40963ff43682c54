package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumenedit/ledger-api/internal/domain"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeArchived EventType = "archived"
	EventTypeUpdated  EventType = "updated"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeStatement EntityType = "statement"
	EntityTypeLedger    EntityType = "ledger"
)

// Event represents a WebSocket event message sent to subscribers
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "statement.archived"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "statement"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// StatementArchived creates a statement.archived event
func StatementArchived(payload domain.StatementArchivedEvent) Event {
	event := NewEvent(EventTypeArchived, EntityTypeStatement, payload)
	if !payload.OccurredAt.IsZero() {
		event.Timestamp = payload.OccurredAt.UTC()
	}
	return event
}

// eventFor wraps a domain event for the wire
func eventFor(payload any) Event {
	switch p := payload.(type) {
	case domain.StatementArchivedEvent:
		return StatementArchived(p)
	case *domain.StatementArchivedEvent:
		return StatementArchived(*p)
	case Event:
		return p
	default:
		return NewEvent(EventTypeUpdated, EntityTypeLedger, payload)
	}
}
