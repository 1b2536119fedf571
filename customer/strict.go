package customer

import "github.com/edgestore/customerstore/internal/errors"

// ErrWrongConfirmationHash is returned by ConfirmStrict when the hash does not
// match the one issued for the current email address.
var ErrWrongConfirmationHash = errors.Str("wrong confirmation hash")

// ConfirmStrict is the direct-state form of Confirm: a mismatch is an
// error and state is returned untouched.
func ConfirmStrict(state State, cmd *ConfirmEmailAddress) (State, error) {
	const op errors.Op = "customer/ConfirmStrict"

	events := Confirm(state, cmd)
	for _, event := range events {
		if _, ok := event.(*EmailAddressConfirmationFailed); ok {
			return state, errors.E(op, errors.Invalid, cmd.ID, ErrWrongConfirmationHash)
		}
	}

	return Fold(state, events...), nil
}

func ChangeEmailStrict(state State, cmd *ChangeEmailAddress) State {
	return Fold(state, ChangeEmail(state, cmd)...)
}

func RenameStrict(state State, cmd *ChangeName) State {
	return Fold(state, Rename(state, cmd)...)
}
