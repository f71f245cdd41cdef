package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "addressbook/pkg/domain-errors"
)

type SearchValidationSuite struct {
	suite.Suite
}

func TestSearchValidationSuite(t *testing.T) {
	suite.Run(t, new(SearchValidationSuite))
}

func (s *SearchValidationSuite) requireMessage(err error, expected string) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(expected, dErrors.MessageOf(err))
}

func (s *SearchValidationSuite) TestIsStrictlyNumeric() {
	s.Run("accepts digit strings", func() {
		for _, v := range []string{"0", "123", "999", "007", "2133"} {
			s.True(IsStrictlyNumeric(v), v)
		}
	})

	s.Run("rejects everything else", func() {
		for _, v := range []string{"", "abc", "12a", "-123", "+12", "12.34", " 12", "12 ", "１２"} {
			s.False(IsStrictlyNumeric(v), v)
		}
	})
}

func (s *SearchValidationSuite) TestValidateSearchQuery() {
	s.Run("valid query passes", func() {
		s.NoError(ValidateSearchQuery("2133", "123"))
	})

	s.Run("missing postcode", func() {
		s.requireMessage(ValidateSearchQuery("", "123"), "Postcode and street number fields mandatory!")
	})

	s.Run("missing street number", func() {
		s.requireMessage(ValidateSearchQuery("2133", ""), "Postcode and street number fields mandatory!")
	})

	s.Run("short postcode", func() {
		s.requireMessage(ValidateSearchQuery("21", "123"), "Postcode must be at least 4 digits!")
	})

	s.Run("length is checked before digits", func() {
		s.requireMessage(ValidateSearchQuery("ab", "123"), "Postcode must be at least 4 digits!")
	})

	s.Run("non numeric postcode", func() {
		s.requireMessage(ValidateSearchQuery("21a3", "123"), "Postcode must be all digits and non negative!")
	})

	s.Run("negative street number", func() {
		s.requireMessage(ValidateSearchQuery("2133", "-5"), "Street Number must be all digits and non negative!")
	})

	s.Run("leading zeros are literal digits", func() {
		s.NoError(ValidateSearchQuery("0200", "007"))
	})
}

func (s *SearchValidationSuite) TestValidSearchQueriesNeverFail() {
	for postcode := 1000; postcode <= 99999; postcode += 997 {
		for house := 0; house < 300; house += 37 {
			p, h := fmt.Sprint(postcode), fmt.Sprint(house)
			s.NoError(ValidateSearchQuery(p, h), "%s/%s", p, h)
		}
	}
}

func (s *SearchValidationSuite) TestShortPostcodesAlwaysGetLengthMessage() {
	for _, p := range []string{"1", "12", "123", "abc", "0", "-1", "1.2"} {
		s.requireMessage(ValidateSearchQuery(p, "1"), MsgPostcodeTooShort)
	}
}

func (s *SearchValidationSuite) TestValidateSearchForm() {
	s.Run("requires both fields", func() {
		s.requireMessage(ValidateSearchForm("", "2"), "Post code and house number are required!")
		s.requireMessage(ValidateSearchForm("2133", "  "), "Post code and house number are required!")
	})

	s.Run("postcode length uses form wording", func() {
		s.requireMessage(ValidateSearchForm("213", "2"), "Post code must be at least 4 characters!")
	})

	s.Run("does not check digits", func() {
		s.NoError(ValidateSearchForm("abcd", "2"))
	})
}
