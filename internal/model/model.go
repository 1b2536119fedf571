package model

import (
	"regexp"
)

// ID identifies an aggregate. Customer IDs are UUID v4 strings.
type ID string

// Version is the position of an event in the history of its aggregate, starting at 1.
type Version int

var uuidV4 = regexp.MustCompile("^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-4[a-fA-F0-9]{3}-[89aAbB][a-fA-F0-9]{3}-[a-fA-F0-9]{12}$")

// IsValidUUIDV4 checks if a given string is a valid UUID v4.
func IsValidUUIDV4(uuid string) bool {
	return uuidV4.MatchString(uuid)
}
