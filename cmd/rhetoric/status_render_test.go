package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"rhetoric/internal/pipeline"
	"rhetoric/internal/store"
	"rhetoric/internal/transcript"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("LLM API key", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "LLM API key:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Data directory", statusOK, "ok", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestRenderAnswerColors(t *testing.T) {
	tests := []struct {
		answer store.Answer
		color  string
	}{
		{store.AnswerYes, ansiRed},
		{store.AnswerNo, ansiGreen},
		{store.AnswerCannotDetermine, ansiYellow},
	}
	for _, tt := range tests {
		t.Run(string(tt.answer), func(t *testing.T) {
			if got := renderAnswer(tt.answer, true); !strings.Contains(got, tt.color) {
				t.Fatalf("renderAnswer(%q) = %q, want color %q", tt.answer, got, tt.color)
			}
			if got := renderAnswer(tt.answer, false); got != strings.ToUpper(string(tt.answer)) {
				t.Fatalf("uncolored answer = %q", got)
			}
		})
	}
}

func TestRenderOutcome(t *testing.T) {
	out := pipeline.Outcome{
		RunID:            "run-7",
		Transcript:       store.Transcript{VideoID: "ABC123", Title: "T", Channel: "C", Text: "words", Source: store.SourceWatchPage, FetchedAt: time.Now()},
		TranscriptSource: transcript.ProvenanceFresh,
		Verdict: store.Verdict{
			Answer:    store.AnswerYes,
			Reasoning: strings.Repeat("long reasoning ", 12),
			Evidence:  []string{"first quote", "second quote"},
			Model:     "m",
		},
		VerdictSource:    transcript.ProvenanceFresh,
		ReanalysisReason: "transcript fetched in this run",
		Warnings:         []string{"video title unavailable; stored placeholder"},
	}
	got := renderOutcome(out, false)
	for _, want := range []string{"YES", `1. "first quote"`, `2. "second quote"`, "run-7", "transcript fetched in this run", "[WARN] video title unavailable"} {
		requireContains(t, got, want)
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, statusIndent+statusIndent+"long") && len(line) > wrapWidth+len(statusIndent)*2 {
			t.Fatalf("reasoning not wrapped: %q", line)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
