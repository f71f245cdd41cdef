package validation

import (
	"strings"

	pstrings "addressbook/pkg/platform/strings"
)

// ValidatePersonName checks the person form. Names are trimmed before every check.
func ValidatePersonName(firstName, lastName string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName == "" || lastName == "" {
		return invalid(MsgPersonMandatory)
	}
	if pstrings.RuneLen(firstName) < minNameLength {
		return invalid(MsgFirstNameTooShort)
	}
	if pstrings.RuneLen(lastName) < minNameLength {
		return invalid(MsgLastNameTooShort)
	}
	return nil
}
