package youtube

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"rhetoric/internal/textutil"
)

// srv1 layout: <transcript><text start="1.2" dur="3.4">words</text></transcript>
type timedTextV1 struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// srv3 layout: <timedtext format="3"><body><p t="1200" d="3400">...</p></body></timedtext>
type timedTextV3 struct {
	Body struct {
		Paragraphs []struct {
			T     string `xml:"t,attr"`
			D     string `xml:"d,attr"`
			Text  string `xml:",chardata"`
			Spans []struct {
				Text string `xml:",chardata"`
			} `xml:"s"`
		} `xml:"p"`
	} `xml:"body"`
}

// parseTimedText decodes either timed text layout into segments, dropping
// fragments that are empty after normalization or carry no usable start.
func parseTimedText(body []byte) ([]Segment, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if bytes.Contains(body, []byte(`format="3"`)) {
		var doc timedTextV3
		if err := xml.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("parse timed text: %w", err)
		}
		segments := make([]Segment, 0, len(doc.Body.Paragraphs))
		for _, p := range doc.Body.Paragraphs {
			raw := p.Text
			if len(p.Spans) > 0 {
				parts := make([]string, 0, len(p.Spans))
				for _, s := range p.Spans {
					parts = append(parts, s.Text)
				}
				raw = strings.Join(parts, "")
			}
			text := textutil.Normalize(raw)
			start, ok := parseSeconds(p.T)
			if text == "" || !ok {
				continue
			}
			dur, _ := parseSeconds(p.D)
			segments = append(segments, Segment{
				Text:     text,
				Start:    start / 1000,
				Duration: dur / 1000,
			})
		}
		return segments, nil
	}

	var doc timedTextV1
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse timed text: %w", err)
	}
	segments := make([]Segment, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		text := textutil.Normalize(line.Text)
		start, ok := parseSeconds(line.Start)
		if text == "" || !ok {
			continue
		}
		dur, _ := parseSeconds(line.Dur)
		segments = append(segments, Segment{
			Text:     text,
			Start:    start,
			Duration: dur,
		})
	}
	return segments, nil
}

// parseSeconds reads a timing attribute. Missing, malformed, negative and
// non-finite values report false.
func parseSeconds(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
