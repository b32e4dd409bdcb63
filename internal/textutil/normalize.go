package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CollapseWhitespace trims s and replaces every whitespace run with one space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize unescapes HTML entities, drops inline tags, applies NFC, and
// collapses whitespace.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = norm.NFC.String(s)
	return CollapseWhitespace(s)
}

// FoldLabel returns a caseless, whitespace-collapsed form of s for comparing
// labels such as "cannot   DETERMINE" with "Cannot determine".
func FoldLabel(s string) string {
	return cases.Fold().String(CollapseWhitespace(s))
}

// Truncate shortens s to at most max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}
