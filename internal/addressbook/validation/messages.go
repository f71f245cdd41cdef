package validation

// Search endpoint messages. These strings are part of the public API contract
// and are matched verbatim by clients.
const (
	MsgSearchFieldsMandatory = "Postcode and street number fields mandatory!"
	MsgPostcodeTooShort      = "Postcode must be at least 4 digits!"
	MsgNotAllDigitsSuffix    = " must be all digits and non negative!"
	MsgNoResults             = "No results found!"
	MsgSearchInternal        = "Internal server error occurred while searching addresses"

	FieldPostcode     = "Postcode"
	FieldStreetNumber = "Street Number"
)

// In-page form messages. Kept separate from the endpoint table on purpose: both
// tables are matched verbatim by their consumers.
const (
	MsgFormSearchRequired   = "Post code and house number are required!"
	MsgFormPostcodeTooShort = "Post code must be at least 4 characters!"
	MsgPersonMandatory      = "First name and last name fields mandatory!"
	MsgFirstNameTooShort    = "First name must be at least 2 characters!"
	MsgLastNameTooShort     = "Last name must be at least 2 characters!"
	MsgNoAddressSelected    = "No address selected, try to select an address or find one if you haven't"
	MsgSelectedNotFound     = "Selected address not found"
	MsgDuplicateEntry       = "This person already has this address in the address book!"
	MsgLookupFailed         = "An error occurred while searching for addresses"
)

const (
	minPostcodeLength = 4
	minNameLength     = 2
)
