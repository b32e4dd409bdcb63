package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"rhetoric/internal/pipeline"
	"rhetoric/internal/store"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type transcriptJSON struct {
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	Channel      string    `json:"channel"`
	Language     string    `json:"language"`
	Source       string    `json:"source"`
	SegmentCount int       `json:"segment_count"`
	Characters   int       `json:"characters"`
	ContentHash  string    `json:"content_hash"`
	FetchedAt    time.Time `json:"fetched_at"`
}

func transcriptJSONFrom(t store.Transcript) transcriptJSON {
	return transcriptJSON{
		VideoID:      t.VideoID,
		Title:        t.Title,
		Channel:      t.Channel,
		Language:     t.Language,
		Source:       t.Source,
		SegmentCount: t.SegmentCount,
		Characters:   len([]rune(t.Text)),
		ContentHash:  t.ContentHash,
		FetchedAt:    t.FetchedAt,
	}
}

type analyzeJSON struct {
	RunID            string         `json:"run_id"`
	Transcript       transcriptJSON `json:"transcript"`
	TranscriptSource string         `json:"transcript_source"`
	Verdict          store.Verdict  `json:"verdict"`
	VerdictSource    string         `json:"verdict_source"`
	ReanalysisReason string         `json:"reanalysis_reason,omitempty"`
	Warnings         []string       `json:"warnings"`
}

func analyzeJSONFromOutcome(out pipeline.Outcome) analyzeJSON {
	return analyzeJSON{
		RunID:            out.RunID,
		Transcript:       transcriptJSONFrom(out.Transcript),
		TranscriptSource: string(out.TranscriptSource),
		Verdict:          out.Verdict,
		VerdictSource:    string(out.VerdictSource),
		ReanalysisReason: out.ReanalysisReason,
		Warnings:         nonNil(out.Warnings),
	}
}

type extractJSON struct {
	RunID            string         `json:"run_id"`
	Transcript       transcriptJSON `json:"transcript"`
	TranscriptSource string         `json:"transcript_source"`
	Changed          bool           `json:"changed"`
	Warnings         []string       `json:"warnings"`
}

func extractJSONFromOutcome(out pipeline.ExtractOutcome) extractJSON {
	return extractJSON{
		RunID:            out.RunID,
		Transcript:       transcriptJSONFrom(out.Transcript),
		TranscriptSource: string(out.TranscriptSource),
		Changed:          out.Changed,
		Warnings:         nonNil(out.Warnings),
	}
}

type showJSON struct {
	Transcript     transcriptJSON `json:"transcript"`
	TranscriptPath string         `json:"transcript_path"`
	Verdict        *store.Verdict `json:"verdict"`
	VerdictPath    string         `json:"verdict_path,omitempty"`
	Stale          bool           `json:"stale"`
}

type listEntryJSON struct {
	VideoID    string     `json:"video_id"`
	Title      string     `json:"title"`
	Channel    string     `json:"channel"`
	FetchedAt  time.Time  `json:"fetched_at"`
	Answer     string     `json:"answer,omitempty"`
	AnalyzedAt *time.Time `json:"analyzed_at,omitempty"`
	Stale      bool       `json:"stale"`
}

func listJSONFrom(summaries []store.Summary) []listEntryJSON {
	entries := make([]listEntryJSON, 0, len(summaries))
	for _, s := range summaries {
		entry := listEntryJSON{
			VideoID:   s.VideoID,
			Title:     s.Title,
			Channel:   s.Channel,
			FetchedAt: s.FetchedAt,
			Answer:    string(s.Answer),
			Stale:     s.Stale,
		}
		if !s.AnalyzedAt.IsZero() {
			analyzed := s.AnalyzedAt
			entry.AnalyzedAt = &analyzed
		}
		entries = append(entries, entry)
	}
	return entries
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
