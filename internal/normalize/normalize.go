// Package normalize implements the fixed canonicalization rule set applied
// to field values before comparison. The rules are deliberately mechanical,
// not heuristic, so that consolidation stays deterministic: Unicode NFKC,
// case folding, whitespace collapse, and for identifier-like fields a full
// punctuation strip.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// Any whitespace run, including a lone tab or newline: OCR text embeds
	// single newlines inside addresses and names, and those must compare
	// equal to their space-separated form.
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]+`)
)

// Value canonicalizes a free-text field value: NFKC normalization, case
// fold, whitespace collapsed to single spaces, leading/trailing space
// trimmed. Idempotent: Value(Value(s)) == Value(s).
func Value(s string) string {
	n := norm.NFKC.String(s)
	n = cases.Fold().String(n)
	n = strings.TrimSpace(n)
	n = whitespaceRun.ReplaceAllString(n, " ")
	return n
}

// Identifier canonicalizes identifier-like values (ID numbers, phone
// numbers, pincodes) by applying Value and then stripping everything that
// is not a letter or digit, so "9876 5432 1098" and "987654321098" compare
// equal. Idempotent.
func Identifier(s string) string {
	return nonAlnum.ReplaceAllString(Value(s), "")
}
