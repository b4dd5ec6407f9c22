// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// IsNumeric checks if a string contains only digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldName prepares a name fragment for fuzzy comparison: diacritics are
// stripped ("García" -> "Garcia"), the result is lowercased, and interior
// whitespace is collapsed to single spaces.
func FoldName(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// CanonicalProfessor normalizes a professor name to the catalog storage form:
// uppercase, single interior spaces, trimmed. The grade table stores names as
// "LASTNAME, FIRSTINITIAL".
func CanonicalProfessor(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// LastNameOf extracts the surname from a catalog-form professor name.
// "SMITH, J" -> "SMITH"; names without a comma are returned whole.
func LastNameOf(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
