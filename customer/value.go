package customer

import (
	"net/mail"
	"strings"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/model"
	uuid "github.com/satori/go.uuid"
)

// ID identifies a customer.
type ID = model.ID

// Hash is the one-time token a customer presents to confirm an email address.
type Hash string

// EmailAddress is a customer email address. Equality is byte equality; no
// normalization is applied.
type EmailAddress string

// PersonName is the name a customer registered with.
type PersonName struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// NewID returns a random UUIDv4 identifier.
func NewID() ID {
	return ID(uuid.Must(uuid.NewV4()).String())
}

// NewHash returns a random UUIDv4 confirmation hash.
func NewHash() Hash {
	return Hash(uuid.Must(uuid.NewV4()).String())
}

func (h Hash) String() string {
	return string(h)
}

func (e EmailAddress) String() string {
	return string(e)
}

// Validate reports whether e is a bare RFC 5322 address such as john@doe.com.
func (e EmailAddress) Validate() error {
	const op errors.Op = "customer/EmailAddress.Validate"

	if e == "" {
		return errors.E(op, errors.Invalid, "email address is required")
	}

	addr, err := mail.ParseAddress(string(e))
	if err != nil || addr.Address != string(e) {
		return errors.E(op, errors.Invalid, "malformed email address "+string(e))
	}

	return nil
}

// NewPersonName trims both parts of the name.
func NewPersonName(givenName, familyName string) PersonName {
	return PersonName{
		GivenName:  strings.TrimSpace(givenName),
		FamilyName: strings.TrimSpace(familyName),
	}
}

func (n PersonName) String() string {
	return strings.TrimSpace(n.GivenName + " " + n.FamilyName)
}

func (n PersonName) Validate() error {
	const op errors.Op = "customer/PersonName.Validate"

	if n.GivenName == "" || n.FamilyName == "" {
		return errors.E(op, errors.Invalid, "given and family name are required")
	}

	return nil
}
