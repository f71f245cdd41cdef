package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "   ", expected: ""},
		{name: "trims and lowercases", input: "  Jane ", expected: "jane"},
		{name: "keeps inner spaces", input: " Edward  Street ", expected: "edward  street"},
		{name: "unicode", input: "ÉLODIE", expected: "élodie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrimLower(tt.input))
		})
	}
}

func TestKey(t *testing.T) {
	t.Run("separates parts unambiguously", func(t *testing.T) {
		assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
		assert.NotEqual(t, Key("a\x1fb", "c"), Key("a", "b\x1fc"))
		assert.NotEqual(t, Key("1:a", "b"), Key("1", "a1:b"))
		assert.NotEqual(t, Key("", "a"), Key("a", ""))
	})

	t.Run("length prefixed", func(t *testing.T) {
		assert.Equal(t, "4:jane3:doe4:2133", Key("jane", "doe", "2133"))
	})

	t.Run("equal parts give equal keys", func(t *testing.T) {
		assert.Equal(t, Key(TrimLower("Jane "), "2133"), Key(TrimLower(" jane"), "2133"))
	})
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 2, RuneLen("Jo"))
	assert.Equal(t, 2, RuneLen("Ñé"))
	assert.Equal(t, 0, RuneLen(""))
}
