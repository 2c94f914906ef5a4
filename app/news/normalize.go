package news

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold returns s in NFKC form with case folded, for case-insensitive comparisons.
func Fold(s string) string {
	return folder.String(norm.NFKC.String(s))
}

// NormalizeTitle builds the deduplication key for an article title.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(Fold(title)), " ")
}

// ContainsFolded reports whether text contains term, ignoring case. Both are expected to be folded already.
func ContainsFolded(text, term string) bool {
	return term != "" && strings.Contains(text, term)
}
