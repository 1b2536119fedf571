package customer

import (
	"github.com/edgestore/customerstore/internal/eventstore"
	"github.com/edgestore/customerstore/internal/model"
)

// Event is one of the facts recorded for a customer: *Registered,
// *EmailAddressConfirmed, *EmailAddressConfirmationFailed, *EmailAddressChanged
// or *NameChanged. The set is closed.
type Event interface {
	model.Event
	envelope() *model.EventModel
}

type Registered struct {
	model.EventModel
	EmailAddress     EmailAddress `json:"email_address"`
	ConfirmationHash Hash         `json:"confirmation_hash"`
	Name             PersonName   `json:"name"`
}

type EmailAddressConfirmed struct {
	model.EventModel
}

// EmailAddressConfirmationFailed records a confirmation attempt with a hash that
// did not match.
type EmailAddressConfirmationFailed struct {
	model.EventModel
}

type EmailAddressChanged struct {
	model.EventModel
	EmailAddress     EmailAddress `json:"email_address"`
	ConfirmationHash Hash         `json:"confirmation_hash"`
}

type NameChanged struct {
	model.EventModel
	Name PersonName `json:"name"`
}

func (Registered) EventType() string                     { return "CustomerRegistered" }
func (EmailAddressConfirmed) EventType() string          { return "CustomerEmailAddressConfirmed" }
func (EmailAddressConfirmationFailed) EventType() string { return "CustomerEmailAddressConfirmationFailed" }
func (EmailAddressChanged) EventType() string            { return "CustomerEmailAddressChanged" }
func (NameChanged) EventType() string                    { return "CustomerNameChanged" }

func (e *Registered) envelope() *model.EventModel                     { return &e.EventModel }
func (e *EmailAddressConfirmed) envelope() *model.EventModel          { return &e.EventModel }
func (e *EmailAddressConfirmationFailed) envelope() *model.EventModel { return &e.EventModel }
func (e *EmailAddressChanged) envelope() *model.EventModel            { return &e.EventModel }
func (e *NameChanged) envelope() *model.EventModel                    { return &e.EventModel }

// NewSerializer returns a JSON serializer bound to every customer event.
func NewSerializer() *eventstore.JSONSerializer {
	events := []model.Event{
		Registered{},
		EmailAddressConfirmed{},
		EmailAddressConfirmationFailed{},
		EmailAddressChanged{},
		NameChanged{},
	}

	return eventstore.NewJSONSerializer(events...)
}

// Events converts decoded events back into customer events, dropping anything else.
func Events(events []model.Event) []Event {
	result := make([]Event, 0, len(events))
	for _, event := range events {
		if e, ok := event.(Event); ok {
			result = append(result, e)
		}
	}

	return result
}
