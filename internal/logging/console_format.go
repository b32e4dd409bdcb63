package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"rhetoric/internal/textutil"
)

const (
	// Console headers carry the local wall-clock time only; the JSON file
	// keeps full UTC timestamps.
	consoleTimeLayout = "15:04:05"
	// Values longer than this are cut in console output, e.g. raw model
	// replies or caption text.
	maxConsoleValueRunes = 160
	shortHashLen         = 12
)

// Keys holding SHA-256 content hashes, shown abbreviated on the console.
var hashKeys = map[string]struct{}{
	"content_hash":    {},
	"transcript_hash": {},
}

func consoleTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(consoleTimeLayout)
}

// headerValue renders the component, video, and stage values placed in the
// line header. They are never quoted.
func headerValue(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}

// formatField renders one field value for a console detail line.
func formatField(key string, v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if _, ok := hashKeys[key]; ok {
			s = shortHash(s)
		}
		return quoteIfNeeded(textutil.Truncate(s, maxConsoleValueRunes))
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Local().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		switch val := v.Any().(type) {
		case error:
			return quoteIfNeeded(textutil.Truncate(val.Error(), maxConsoleValueRunes))
		case []string:
			return quoteIfNeeded(textutil.Truncate(strings.Join(val, "; "), maxConsoleValueRunes))
		default:
			return quoteIfNeeded(textutil.Truncate(fmt.Sprint(val), maxConsoleValueRunes))
		}
	default:
		return v.String()
	}
}

func shortHash(s string) string {
	if len(s) <= shortHashLen {
		return s
	}
	return s[:shortHashLen]
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r < ' ' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}
