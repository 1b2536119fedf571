package customer

import "fmt"

// State is the projection of a customer's events.
type State struct {
	EmailAddress     EmailAddress `json:"email_address"`
	ConfirmationHash Hash         `json:"confirmation_hash"`
	Name             PersonName   `json:"name"`
	IsEmailConfirmed bool         `json:"is_email_confirmed"`
	Registered       bool         `json:"registered"`
}

// Fold applies events to state in order and returns the result. state is not
// modified. Events other than *Registered are only meaningful after one.
func Fold(state State, events ...Event) State {
	for _, event := range events {
		switch e := event.(type) {
		case *Registered:
			state = State{
				EmailAddress:     e.EmailAddress,
				ConfirmationHash: e.ConfirmationHash,
				Name:             e.Name,
				Registered:       true,
			}
		case *EmailAddressConfirmed:
			state.IsEmailConfirmed = true
		case *EmailAddressConfirmationFailed:
		case *EmailAddressChanged:
			state.EmailAddress = e.EmailAddress
			state.ConfirmationHash = e.ConfirmationHash
			state.IsEmailConfirmed = false
		case *NameChanged:
			state.Name = e.Name
		default:
			panic(fmt.Sprintf("customer: unknown event %T", event))
		}
	}

	return state
}

// Reconstitute folds a full history starting from the empty state.
func Reconstitute(events []Event) State {
	return Fold(State{}, events...)
}
