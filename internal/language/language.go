package language

import (
	"fmt"
	"strings"

	textlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize parses each code as a BCP 47 tag and returns the canonical
// forms in input order with blanks and duplicates removed.
func Normalize(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		tag, err := textlang.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", code, err)
		}
		canonical := tag.String()
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}

// DisplayName returns the English name of a language code followed by the
// code, e.g. "British English (en-GB)". Unknown or unparsable codes are
// returned as-is.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := textlang.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if name == "" || strings.EqualFold(name, code) {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}
