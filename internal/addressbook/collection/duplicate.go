package collection

import (
	"addressbook/internal/addressbook/models"
	pstrings "addressbook/pkg/platform/strings"
)

// Check classifies candidate against existing entries.
//
// An exact duplicate matches on trimmed, case-insensitive first name, last
// name, street and city plus the raw postcode; it also reports PersonExists and
// the matching entry. Otherwise PersonExists is true when any entry has the same
// normalized first and last name, at whatever address.
func Check(existing []models.Address, candidate models.Address) models.DuplicateResult {
	key := entryKey(candidate)
	for i := range existing {
		if entryKey(existing[i]) == key {
			match := existing[i]
			return models.DuplicateResult{
				IsDuplicate:   true,
				PersonExists:  true,
				ExistingMatch: &match,
			}
		}
	}

	person := personKey(candidate)
	for i := range existing {
		if personKey(existing[i]) == person {
			return models.DuplicateResult{PersonExists: true}
		}
	}
	return models.DuplicateResult{}
}

func entryKey(a models.Address) string {
	return pstrings.Key(
		pstrings.TrimLower(a.FirstName),
		pstrings.TrimLower(a.LastName),
		pstrings.TrimLower(a.Street),
		pstrings.TrimLower(a.City),
		a.Postcode,
	)
}

func personKey(a models.Address) string {
	return pstrings.Key(pstrings.TrimLower(a.FirstName), pstrings.TrimLower(a.LastName))
}
