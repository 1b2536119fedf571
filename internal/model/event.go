package model

import (
	"reflect"
	"time"
)

// Event describes a fact that happened to an aggregate.
type Event interface {
	EventID() ID
	EventTenantID() ID
	EventVersion() Version
	EventAt() *time.Time
}

// EventTyper is an optional interface that an Event can implement to specify
// an event type different than the name of the struct.
type EventTyper interface {
	// EventType returns the name of event type
	EventType() string
}

// EventModel provides the envelope shared by all events.
type EventModel struct {
	// ID contains the aggregate ID.
	ID ID `json:"id"`

	// TenantID is the owner of an event.
	TenantID ID `json:"tenant_id"`

	// Version is the incremental version of an event
	Version Version `json:"version"`

	// At is the date the event was created
	At *time.Time `json:"at"`
}

func (m EventModel) EventID() ID {
	return m.ID
}

func (m EventModel) EventTenantID() ID {
	return m.TenantID
}

func (m EventModel) EventVersion() Version {
	return m.Version
}

func (m EventModel) EventAt() *time.Time {
	return m.At
}

// Stamp fills the envelope of an event at the moment it is emitted.
func (m *EventModel) Stamp(id, tenantID ID, version Version, at time.Time) {
	m.ID = id
	m.TenantID = tenantID
	m.Version = version
	m.At = &at
}

// EventType extracts the event type name of the event along with its reflect.Type.
//
// Primarily useful for serializers that need to understand how to marshal and unmarshal
// instances of Event to a []byte.
func EventType(event Event) (string, reflect.Type) {
	t := reflect.TypeOf(event)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if v, ok := event.(EventTyper); ok {
		return v.EventType(), t
	}

	return t.Name(), t
}
