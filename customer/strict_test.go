package customer

import (
	"testing"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmStrict(t *testing.T) {
	state, reg := registeredState(t)

	got, err := ConfirmStrict(state, NewConfirmEmailAddress(tenant, reg.ID, "wrong"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongConfirmationHash)
	assert.True(t, errors.Is(errors.Invalid, err))
	assert.Equal(t, state, got)

	got, err = ConfirmStrict(state, NewConfirmEmailAddress(tenant, reg.ID, reg.ConfirmationHash))
	require.NoError(t, err)
	assert.True(t, got.IsEmailConfirmed)

	again, err := ConfirmStrict(got, NewConfirmEmailAddress(tenant, reg.ID, reg.ConfirmationHash))
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestChangeEmailStrict(t *testing.T) {
	state, reg := registeredState(t)
	state, err := ConfirmStrict(state, NewConfirmEmailAddress(tenant, reg.ID, reg.ConfirmationHash))
	require.NoError(t, err)

	same := ChangeEmailStrict(state, NewChangeEmailAddress(tenant, reg.ID, "john@doe.com"))
	assert.Equal(t, state, same)

	cmd := NewChangeEmailAddress(tenant, reg.ID, "john+changed@doe.com")
	changed := ChangeEmailStrict(state, cmd)
	assert.Equal(t, cmd.EmailAddress, changed.EmailAddress)
	assert.Equal(t, cmd.ConfirmationHash, changed.ConfirmationHash)
	assert.False(t, changed.IsEmailConfirmed)
}

func TestRenameStrict(t *testing.T) {
	state, reg := registeredState(t)

	changed := RenameStrict(state, NewChangeName(tenant, reg.ID, "Jane", "Roe"))
	assert.Equal(t, PersonName{GivenName: "Jane", FamilyName: "Roe"}, changed.Name)
	assert.Equal(t, state.EmailAddress, changed.EmailAddress)
}
