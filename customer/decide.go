package customer

import (
	"fmt"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/model"
)

// The decide functions are pure: they return zero or one event and never touch
// the envelope beyond the customer and tenant IDs taken from the command.

func Register(cmd *RegisterCustomer) []Event {
	return []Event{&Registered{
		EventModel:       model.EventModel{ID: cmd.ID, TenantID: cmd.TenantID},
		EmailAddress:     cmd.EmailAddress,
		ConfirmationHash: cmd.ConfirmationHash,
		Name:             cmd.Name,
	}}
}

// Confirm reports a hash mismatch as EmailAddressConfirmationFailed,
// even when the address is already confirmed. A matching hash on a confirmed
// address yields nothing.
func Confirm(state State, cmd *ConfirmEmailAddress) []Event {
	envelope := model.EventModel{ID: cmd.ID, TenantID: cmd.TenantID}

	if cmd.ConfirmationHash != state.ConfirmationHash {
		return []Event{&EmailAddressConfirmationFailed{EventModel: envelope}}
	}

	if state.IsEmailConfirmed {
		return nil
	}

	return []Event{&EmailAddressConfirmed{EventModel: envelope}}
}

// ChangeEmail yields nothing when the address is unchanged. Otherwise the
// event carries the address and hash of the command.
func ChangeEmail(state State, cmd *ChangeEmailAddress) []Event {
	if cmd.EmailAddress == state.EmailAddress {
		return nil
	}

	return []Event{&EmailAddressChanged{
		EventModel:       model.EventModel{ID: cmd.ID, TenantID: cmd.TenantID},
		EmailAddress:     cmd.EmailAddress,
		ConfirmationHash: cmd.ConfirmationHash,
	}}
}

func Rename(state State, cmd *ChangeName) []Event {
	if cmd.Name == state.Name {
		return nil
	}

	return []Event{&NameChanged{
		EventModel: model.EventModel{ID: cmd.ID, TenantID: cmd.TenantID},
		Name:       cmd.Name,
	}}
}

// Decide dispatches cmd to its decide function.
func Decide(state State, cmd model.Command) ([]Event, error) {
	const op errors.Op = "customer/Decide"

	switch c := cmd.(type) {
	case *RegisterCustomer:
		return Register(c), nil
	case *ConfirmEmailAddress:
		return Confirm(state, c), nil
	case *ChangeEmailAddress:
		return ChangeEmail(state, c), nil
	case *ChangeName:
		return Rename(state, c), nil
	default:
		return nil, errors.E(op, errors.Invalid, fmt.Sprintf("unknown command %T", cmd))
	}
}
