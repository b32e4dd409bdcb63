// Package videoid resolves user input into canonical YouTube video identifiers.
package videoid

import (
	"net/url"
	"regexp"
	"strings"

	"rhetoric/internal/services"
)

// ID is a canonical video identifier. It is safe to use in file names.
type ID string

func (id ID) String() string { return string(id) }

var (
	canonicalPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	looseToken       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

var pathPrefixes = []string{"/embed/", "/v/", "/shorts/", "/live/", "/e/"}

// Resolve normalizes a watch URL, short URL, embed URL, or bare identifier into
// an ID. It is pure; invalid input yields an error marked
// services.ErrInvalidIdentifier.
func Resolve(input string) (ID, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", invalid(input, "empty input")
	}
	if !strings.ContainsAny(raw, "/?=.") {
		if canonicalPattern.MatchString(raw) {
			return ID(raw), nil
		}
		return "", invalid(input, "not an 11-character video identifier")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", invalid(input, "unparseable URL")
	}

	host := canonicalHost(parsed.Hostname())
	switch host {
	case "youtube.com", "youtube-nocookie.com":
		if v := parsed.Query().Get("v"); v != "" {
			return strict(input, v)
		}
		for _, prefix := range pathPrefixes {
			if rest, ok := strings.CutPrefix(parsed.Path, prefix); ok {
				return strict(input, firstSegment(rest))
			}
		}
		return "", invalid(input, "unsupported youtube.com path")
	case "youtu.be":
		return strict(input, firstSegment(strings.TrimPrefix(parsed.Path, "/")))
	default:
		v := strings.TrimSpace(parsed.Query().Get("v"))
		if v == "" {
			return "", invalid(input, "no v= parameter")
		}
		if canonicalPattern.MatchString(v) || looseToken.MatchString(v) {
			return ID(v), nil
		}
		return "", invalid(input, "malformed v= parameter")
	}
}

// MustResolve is Resolve for tests and constants; it panics on invalid input.
func MustResolve(input string) ID {
	id, err := Resolve(input)
	if err != nil {
		panic(err)
	}
	return id
}

func canonicalHost(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, prefix := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}

func firstSegment(path string) string {
	if idx := strings.IndexAny(path, "/?#"); idx >= 0 {
		path = path[:idx]
	}
	return path
}

func strict(input, candidate string) (ID, error) {
	candidate = strings.TrimSpace(candidate)
	if !canonicalPattern.MatchString(candidate) {
		return "", invalid(input, "not an 11-character video identifier")
	}
	return ID(candidate), nil
}

func invalid(input, reason string) error {
	return services.Wrap(services.ErrInvalidIdentifier, "videoid", "resolve", reason+": "+quote(input), nil)
}

func quote(s string) string {
	const limit = 80
	if len(s) > limit {
		s = s[:limit] + "…"
	}
	return `"` + s + `"`
}
