package logs

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"rhetoric/internal/logging"
)

// Entry is one decoded JSON log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	VideoID string
	Stage   string
	RunID   string
	// Attrs holds the remaining fields, flattened to strings.
	Attrs map[string]string
}

// Parse decodes a JSON log line. Lines that are not JSON objects report false.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	entry := Entry{Attrs: make(map[string]string, len(raw))}
	for key, value := range raw {
		text := stringify(value)
		switch key {
		case logging.JSONTimeKey, slog.TimeKey:
			if ts, err := time.Parse(time.RFC3339Nano, text); err == nil {
				entry.Time = ts
			}
		case slog.LevelKey:
			_ = entry.Level.UnmarshalText([]byte(text))
		case slog.MessageKey:
			entry.Message = text
		case logging.FieldVideoID:
			entry.VideoID = text
		case logging.FieldStage:
			entry.Stage = text
		case logging.FieldCorrelationID:
			entry.RunID = text
		default:
			entry.Attrs[key] = text
		}
	}
	return entry, true
}

// AttrKeys returns the attribute keys in sorted order.
func (e Entry) AttrKeys() []string {
	keys := make([]string, 0, len(e.Attrs))
	for key := range e.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
