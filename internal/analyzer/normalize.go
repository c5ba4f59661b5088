package analyzer

import (
	"strings"

	"golang.org/x/text/width"
)

// Normalize folds full-width characters to their half-width forms and
// lower-cases the result so CJK punctuation variants and latin case do
// not defeat substring matching.
func Normalize(s string) string {
	return strings.ToLower(width.Narrow.String(strings.TrimSpace(s)))
}
