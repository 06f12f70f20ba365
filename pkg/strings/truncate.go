// Package strings holds small string helpers for terminal output.
package strings

import (
	"strings"
)

// DefaultDetailMaxLen is the width error details are cut to in tables.
const DefaultDetailMaxLen = 100

// minTruncateLen leaves room for one character plus "...".
const minTruncateLen = 4

// Truncate collapses all whitespace in s into single spaces and shortens the
// result to at most maxLen runes, marking the cut with "...".
func Truncate(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
