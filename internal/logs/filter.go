package logs

import (
	"fmt"
	"log/slog"
	"strings"
)

// Filter selects log lines. Zero-valued fields match everything.
type Filter struct {
	VideoID string
	RunID   string
	Stage   string
	// MinLevel drops records below the level when HasLevel is set.
	MinLevel slog.Level
	HasLevel bool
	// Search is a case-insensitive substring matched against the raw line.
	Search string
}

// ParseLevel converts a level name such as "warn" into a Filter level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", name, err)
	}
	return level, nil
}

func (f Filter) structured() bool {
	return f.VideoID != "" || f.RunID != "" || f.Stage != "" || f.HasLevel
}

// Matches reports whether the raw line passes the filter. Lines that are not
// JSON records only pass filters without structured criteria.
func (f Filter) Matches(line string) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(line), strings.ToLower(f.Search)) {
		return false
	}
	if !f.structured() {
		return true
	}
	entry, ok := Parse(line)
	if !ok {
		return false
	}
	if f.VideoID != "" && entry.VideoID != f.VideoID {
		return false
	}
	if f.RunID != "" && entry.RunID != f.RunID {
		return false
	}
	if f.Stage != "" && !strings.EqualFold(entry.Stage, f.Stage) {
		return false
	}
	if f.HasLevel && entry.Level < f.MinLevel {
		return false
	}
	return true
}
