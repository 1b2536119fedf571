package eventstore

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/golang/snappy"
)

// Serializer converts between Events and Records
type Serializer interface {
	// MarshalEvent converts an Event to a Record
	MarshalEvent(event model.Event) (*Record, error)

	// UnmarshalEvent converts a Record back into an Event
	UnmarshalEvent(record *Record) (model.Event, error)
}

type jsonEvent struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// JSONSerializer encodes events as a {kind, payload} JSON envelope.
type JSONSerializer struct {
	eventTypes map[string]reflect.Type
}

// Bind registers the specified events with the serializer; may be called more than once
func (j *JSONSerializer) Bind(events ...model.Event) {
	for _, event := range events {
		eventType, t := model.EventType(event)
		j.eventTypes[eventType] = t
	}
}

// MarshalEvent converts an event into its persistent type, Record
func (j *JSONSerializer) MarshalEvent(event model.Event) (*Record, error) {
	const op errors.Op = "eventstore/JSONSerializer.MarshalEvent"

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}

	eventType, _ := model.EventType(event)
	data, err := json.Marshal(jsonEvent{
		Kind:    eventType,
		Payload: json.RawMessage(payload),
	})
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}

	record := &Record{
		ID:          NewRecordID(event.EventID(), event.EventTenantID(), event.EventVersion()),
		AggregateID: event.EventID(),
		TenantID:    event.EventTenantID(),
		Version:     event.EventVersion(),
		Data:        data,
	}

	if at := event.EventAt(); at != nil {
		record.CreatedAt = *at
	}

	return record, nil
}

// UnmarshalEvent converts the persistent type, Record, into an Event instance
func (j *JSONSerializer) UnmarshalEvent(record *Record) (model.Event, error) {
	const op errors.Op = "eventstore/JSONSerializer.UnmarshalEvent"

	var wrapper jsonEvent
	if err := json.Unmarshal(record.Data, &wrapper); err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}

	t, ok := j.eventTypes[wrapper.Kind]
	if !ok {
		return nil, errors.E(op, errors.Internal, fmt.Sprintf("unbound event type %v", wrapper.Kind))
	}

	v := reflect.New(t).Interface()
	if err := json.Unmarshal(wrapper.Payload, v); err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}

	return v.(model.Event), nil
}

// MarshalAll is a utility that marshals all the events provided into a History entity
func (j *JSONSerializer) MarshalAll(events ...model.Event) (History, error) {
	history := make(History, 0, len(events))

	for _, event := range events {
		record, err := j.MarshalEvent(event)
		if err != nil {
			return nil, err
		}
		history = append(history, record)
	}

	return history, nil
}

// NewJSONSerializer constructs a new JSONSerializer and populates it with the specified events.
// Bind may be subsequently called to add more events.
func NewJSONSerializer(events ...model.Event) *JSONSerializer {
	serializer := &JSONSerializer{
		eventTypes: map[string]reflect.Type{},
	}
	serializer.Bind(events...)

	return serializer
}

// SnappySerializer compresses the Data of the records produced by another Serializer.
type SnappySerializer struct {
	next Serializer
}

func NewSnappySerializer(next Serializer) *SnappySerializer {
	return &SnappySerializer{next: next}
}

func (s *SnappySerializer) MarshalEvent(event model.Event) (*Record, error) {
	record, err := s.next.MarshalEvent(event)
	if err != nil {
		return nil, err
	}

	record.Data = snappy.Encode(nil, record.Data)

	return record, nil
}

func (s *SnappySerializer) UnmarshalEvent(record *Record) (model.Event, error) {
	const op errors.Op = "eventstore/SnappySerializer.UnmarshalEvent"

	data, err := snappy.Decode(nil, record.Data)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}

	decoded := *record
	decoded.Data = data

	return s.next.UnmarshalEvent(&decoded)
}
