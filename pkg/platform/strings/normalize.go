// Package strings provides string normalization utilities used for identity keys.
package strings

import (
	"strconv"
	"strings"
)

// TrimLower trims surrounding whitespace and lowercases the value.
//
// Example:
//
//	TrimLower("  Jane ")
//	// Returns: "jane"
func TrimLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Key joins the given parts into a single comparison key. Each part is
// prefixed with its byte length, so no content (separators or control
// characters included) can make two different part lists collide. Parts are
// used as given; callers normalize the ones that should compare
// case-insensitively.
//
// Example:
//
//	Key(TrimLower(" Jane"), TrimLower("Doe "), "2133")
//	// Returns: "4:jane3:doe4:2133"
func Key(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strconv.Itoa(len(part)))
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

// RuneLen counts characters rather than bytes.
func RuneLen(value string) int {
	return len([]rune(value))
}
