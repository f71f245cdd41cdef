package validation

import (
	"strconv"
	"strings"

	dErrors "addressbook/pkg/domain-errors"
)

// ValidateSearchQuery enforces the search endpoint contract. Checks run in a
// fixed order and the first failure is returned.
func ValidateSearchQuery(postcode, houseNumber string) error {
	if postcode == "" || houseNumber == "" {
		return invalid(MsgSearchFieldsMandatory)
	}
	if len(postcode) < minPostcodeLength {
		return invalid(MsgPostcodeTooShort)
	}
	if err := ValidateNumericField(postcode, FieldPostcode); err != nil {
		return err
	}
	return ValidateNumericField(houseNumber, FieldStreetNumber)
}

// ValidateNumericField rejects anything IsStrictlyNumeric rejects, naming the field.
func ValidateNumericField(value, fieldName string) error {
	if !IsStrictlyNumeric(value) {
		return invalid(fieldName + MsgNotAllDigitsSuffix)
	}
	return nil
}

// IsStrictlyNumeric accepts non-empty strings of ASCII digits that parse as an
// unsigned integer. Signs, decimals and whitespace are rejected; leading zeros
// are kept as literal digits ("007" is valid).
func IsStrictlyNumeric(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	_, err := strconv.ParseUint(value, 10, 64)
	return err == nil
}

// ValidateSearchForm is the in-page check run before a search is submitted.
// It only gates presence and length; the endpoint check runs afterwards.
func ValidateSearchForm(postCode, houseNumber string) error {
	postCode = strings.TrimSpace(postCode)
	houseNumber = strings.TrimSpace(houseNumber)
	if postCode == "" || houseNumber == "" {
		return invalid(MsgFormSearchRequired)
	}
	if len(postCode) < minPostcodeLength {
		return invalid(MsgFormPostcodeTooShort)
	}
	return nil
}

func invalid(message string) error {
	return dErrors.New(dErrors.CodeValidation, message)
}
