package customer

import (
	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/model"
)

// RegisterCustomer creates a new customer. The ID and hash are generated when the
// command is built.
type RegisterCustomer struct {
	model.CommandModel
	EmailAddress     EmailAddress `json:"email_address"`
	ConfirmationHash Hash         `json:"confirmation_hash"`
	Name             PersonName   `json:"name"`
}

// ConfirmEmailAddress presents the confirmation hash of the current email address.
type ConfirmEmailAddress struct {
	model.CommandModel
	ConfirmationHash Hash `json:"confirmation_hash"`
}

// ChangeEmailAddress replaces the email address. The hash for confirming the new
// address is generated when the command is built, whether or not a change results.
type ChangeEmailAddress struct {
	model.CommandModel
	EmailAddress     EmailAddress `json:"email_address"`
	ConfirmationHash Hash         `json:"confirmation_hash"`
}

// ChangeName replaces the person name.
type ChangeName struct {
	model.CommandModel
	Name PersonName `json:"name"`
}

func NewRegisterCustomer(tenantID model.ID, email EmailAddress, givenName, familyName string) *RegisterCustomer {
	return &RegisterCustomer{
		CommandModel:     model.CommandModel{ID: NewID(), TenantID: tenantID},
		EmailAddress:     email,
		ConfirmationHash: NewHash(),
		Name:             NewPersonName(givenName, familyName),
	}
}

func NewConfirmEmailAddress(tenantID model.ID, id ID, hash Hash) *ConfirmEmailAddress {
	return &ConfirmEmailAddress{
		CommandModel:     model.CommandModel{ID: id, TenantID: tenantID},
		ConfirmationHash: hash,
	}
}

func NewChangeEmailAddress(tenantID model.ID, id ID, email EmailAddress) *ChangeEmailAddress {
	return &ChangeEmailAddress{
		CommandModel:     model.CommandModel{ID: id, TenantID: tenantID},
		EmailAddress:     email,
		ConfirmationHash: NewHash(),
	}
}

func NewChangeName(tenantID model.ID, id ID, givenName, familyName string) *ChangeName {
	return &ChangeName{
		CommandModel: model.CommandModel{ID: id, TenantID: tenantID},
		Name:         NewPersonName(givenName, familyName),
	}
}

// Validate checks the command payload. It does not look at customer state.
func (c *RegisterCustomer) Validate() error {
	const op errors.Op = "customer/RegisterCustomer.Validate"

	if err := c.EmailAddress.Validate(); err != nil {
		return errors.E(op, c.ID, err)
	}

	if err := c.Name.Validate(); err != nil {
		return errors.E(op, c.ID, err)
	}

	if c.ConfirmationHash == "" {
		return errors.E(op, c.ID, errors.Invalid, "confirmation hash is required")
	}

	return nil
}

func (c *ConfirmEmailAddress) Validate() error {
	return nil
}

func (c *ChangeEmailAddress) Validate() error {
	const op errors.Op = "customer/ChangeEmailAddress.Validate"

	if err := c.EmailAddress.Validate(); err != nil {
		return errors.E(op, c.ID, err)
	}

	if c.ConfirmationHash == "" {
		return errors.E(op, c.ID, errors.Invalid, "confirmation hash is required")
	}

	return nil
}

func (c *ChangeName) Validate() error {
	const op errors.Op = "customer/ChangeName.Validate"

	if err := c.Name.Validate(); err != nil {
		return errors.E(op, c.ID, err)
	}

	return nil
}
