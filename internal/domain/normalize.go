package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes to NFD, removes combining marks, and recomposes,
// turning "Bogotá" into "Bogota".
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes an administrative name for key-based joins:
// uppercase, accents stripped, runs of whitespace collapsed to a single
// space, ends trimmed. The empty string (a missing value) maps to itself.
// Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripAccents, strings.ToUpper(s))
	if err != nil {
		out = strings.ToUpper(s)
	}
	return strings.Join(strings.Fields(out), " ")
}
