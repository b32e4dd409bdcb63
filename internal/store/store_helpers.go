package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"time"
)

const (
	transcriptColumns = "video_id, video_title, channel_name, transcript_text, segment_count, transcript_language, content_hash, source, extraction_date"
	verdictColumns    = "video_id, answer, reasoning, evidence_json, model, tokens_used, transcript_hash, run_id, analysis_date"
)

type scanner interface{ Scan(dest ...any) error }

func scanTranscript(row scanner) (*Transcript, error) {
	var (
		t       Transcript
		fetched string
	)
	if err := row.Scan(&t.VideoID, &t.Title, &t.Channel, &t.Text, &t.SegmentCount, &t.Language, &t.ContentHash, &t.Source, &fetched); err != nil {
		return nil, err
	}
	if ts, err := parseTimeString(fetched); err == nil {
		t.FetchedAt = ts
	}
	return &t, nil
}

func scanVerdict(row scanner) (*Verdict, error) {
	var (
		v        Verdict
		answer   string
		evidence string
		analyzed string
	)
	if err := row.Scan(&v.VideoID, &answer, &v.Reasoning, &evidence, &v.Model, &v.TokensUsed, &v.TranscriptHash, &v.RunID, &analyzed); err != nil {
		return nil, err
	}
	v.Answer = Answer(answer)
	v.Evidence = []string{}
	if evidence != "" {
		if err := json.Unmarshal([]byte(evidence), &v.Evidence); err != nil {
			return nil, err
		}
	}
	if ts, err := parseTimeString(analyzed); err == nil {
		v.AnalyzedAt = ts
	}
	return &v, nil
}

// storedTimeLayout is fixed-width so lexical order matches chronological order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	return value.UTC().Format(storedTimeLayout)
}

// normalizeTime drops monotonic readings and sub-storage precision so a value
// read back from the database compares equal to the one written.
func normalizeTime(value time.Time) time.Time {
	if value.IsZero() {
		value = time.Now()
	}
	return value.UTC().Round(0)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// TranscriptPath returns the deterministic mirror path for a transcript.
func (s *Store) TranscriptPath(videoID string) string {
	return filepath.Join(s.transcriptsDir, videoID+".txt")
}

// VerdictPath returns the deterministic mirror path for a verdict.
func (s *Store) VerdictPath(videoID string) string {
	return filepath.Join(s.resultsDir, videoID+".json")
}
