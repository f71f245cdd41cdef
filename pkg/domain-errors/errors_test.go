package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndHasCode(t *testing.T) {
	t.Run("wrap of nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("finds code through fmt wrapping", func(t *testing.T) {
		cause := errors.New("disk full")
		err := fmt.Errorf("save: %w", Wrap(cause, CodeInternal, "failed to save"))

		assert.True(t, HasCode(err, CodeInternal))
		assert.False(t, HasCode(err, CodeValidation))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("finds inner code of nested domain errors", func(t *testing.T) {
		inner := New(CodeValidation, "Postcode must be at least 4 digits!")
		outer := Wrap(inner, CodeBadRequest, "invalid search")

		assert.True(t, HasCode(outer, CodeValidation))
		assert.True(t, Is(outer, CodeBadRequest))
		assert.False(t, Is(outer, CodeValidation))
	})
}

func TestMessageOf(t *testing.T) {
	err := fmt.Errorf("lookup: %w", New(CodeValidation, "Postcode and street number fields mandatory!"))
	assert.Equal(t, "Postcode and street number fields mandatory!", MessageOf(err))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
	assert.Empty(t, MessageOf(nil))

	de, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, de.Code)
}
