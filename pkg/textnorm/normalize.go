// CLAUDE:SUMMARY Canonical comparable form of free text (lowercase, accent-free, straight quotes) plus the street-noise variant used on addresses.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	apostrophes  = strings.NewReplacer("’", "'", "‘", "'")
	doubleQuotes = strings.NewReplacer("«", `"`, "»", `"`, "“", `"`, "”", `"`)
)

// Normalize lowercases, strips combining marks, straightens apostrophes and
// collapses whitespace runs to a single space (e.g. "  Élodie’s  " -> "elodie's").
// The function is total and idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	out = apostrophes.Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// NormalizeAddress is Normalize followed by quote canonicalization and the
// removal of street-name noise: digits and punctuation become spaces, runs are
// collapsed and the result is trimmed.
func NormalizeAddress(s string) string {
	return CollapseNoise(doubleQuotes.Replace(Normalize(s)))
}

// CollapseNoise replaces digits and the punctuation found in street names with
// spaces, then collapses and trims. It does not lowercase.
func CollapseNoise(s string) string {
	return strings.Join(strings.FieldsFunc(s, isStreetNoise), " ")
}

func isStreetNoise(r rune) bool {
	if unicode.IsSpace(r) || (r >= '0' && r <= '9') {
		return true
	}
	switch r {
	case ',', '.', ';', ':', '-', '_', '\'', '"', '/', '\\', '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}
