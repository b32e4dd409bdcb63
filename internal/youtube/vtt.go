package youtube

import (
	"log/slog"
	"strconv"
	"strings"

	"rhetoric/internal/logging"
	"rhetoric/internal/textutil"
)

// parseVTT converts WebVTT cues into segments. Blocks without a timing line
// are skipped and logged at debug level. Auto-generated tracks repeat the
// previous line at the top of each cue; a line identical to the last emitted
// one is dropped.
func parseVTT(raw []byte, logger *slog.Logger) []Segment {
	if logger == nil {
		logger = logging.NewNop()
	}
	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")
	blocks := splitBlocks(content)

	var segments []Segment
	last := ""
	for i, block := range blocks {
		lines := strings.Split(block, "\n")
		head := strings.TrimSpace(lines[0])
		if i == 0 && strings.HasPrefix(head, "WEBVTT") {
			continue
		}
		if strings.HasPrefix(head, "NOTE") || head == "STYLE" || head == "REGION" {
			continue
		}
		timing := -1
		for j, line := range lines {
			if strings.Contains(line, "-->") {
				timing = j
				break
			}
		}
		if timing < 0 {
			logger.Debug("skipping caption block without timing",
				logging.Int("block", i),
				logging.String("text", textutil.Truncate(textutil.CollapseWhitespace(block), 80)),
			)
			continue
		}
		start, end, ok := parseCueTiming(lines[timing])
		if !ok {
			logger.Debug("skipping caption block with malformed timing",
				logging.Int("block", i),
				logging.String("timing", strings.TrimSpace(lines[timing])),
			)
			continue
		}
		for _, line := range lines[timing+1:] {
			text := textutil.Normalize(line)
			if text == "" || text == last {
				continue
			}
			last = text
			segments = append(segments, Segment{Text: text, Start: start, Duration: end - start})
		}
	}
	return segments
}

func splitBlocks(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	raw := strings.Split(trimmed, "\n\n")
	blocks := raw[:0]
	for _, b := range raw {
		if b = strings.Trim(b, "\n"); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// parseCueTiming reads "00:00:01.000 --> 00:00:03.500 align:start".
func parseCueTiming(line string) (float64, float64, bool) {
	left, right, found := strings.Cut(line, "-->")
	if !found {
		return 0, 0, false
	}
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, 0, false
	}
	start, ok := parseTimestamp(strings.TrimSpace(left))
	if !ok {
		return 0, 0, false
	}
	end, ok := parseTimestamp(fields[0])
	if !ok || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// parseTimestamp accepts hh:mm:ss.ttt and mm:ss.ttt.
func parseTimestamp(ts string) (float64, bool) {
	parts := strings.Split(strings.Replace(ts, ",", ".", 1), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var total float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		if i < len(parts)-1 {
			total = (total + v) * 60
		} else {
			total += v
		}
	}
	return total, true
}
