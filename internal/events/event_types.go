package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventContactCreated EventType = "contact_created"
	EventContactUpdated EventType = "contact_updated"
	EventContactDeleted EventType = "contact_deleted"
)

// Event represents a contact lifecycle change. ActorID is always the
// owning identity since only owners may mutate a contact.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ContactID int64       `json:"contact_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// ContactChangedPayload lists the fields a create or update touched.
type ContactChangedPayload struct {
	Fields    []string `json:"fields"`
	AddressID *int64   `json:"address_id,omitempty"`
}
