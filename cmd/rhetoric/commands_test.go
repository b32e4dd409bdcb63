package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rhetoric/internal/services"
	"rhetoric/internal/store"
)

// abcInput resolves through the relaxed v= rule for non-YouTube hosts.
const abcInput = "https://example.com/watch?v=ABC123"

func TestAnalyzeReusesStoredResults(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedTranscript(t, "ABC123", "Hello everyone welcome back")

	out, err := runCLI(t, env, "", "analyze", abcInput, "--json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var payload analyzeJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if payload.Verdict.Answer != store.AnswerNo || payload.Verdict.Reasoning != "no incitement found" {
		t.Fatalf("unexpected verdict %+v", payload.Verdict)
	}
	if payload.Transcript.VideoID != "ABC123" || payload.TranscriptSource != "cache" || payload.VerdictSource != "fresh" {
		t.Fatalf("unexpected provenance %+v", payload)
	}
	if payload.Verdict.RunID != payload.RunID || payload.RunID == "" {
		t.Fatalf("verdict should carry the run id, got %q vs %q", payload.Verdict.RunID, payload.RunID)
	}

	out, err = runCLI(t, env, "", abcInput)
	if err != nil {
		t.Fatalf("root analyze: %v", err)
	}
	requireContains(t, out, "NO")
	requireContains(t, out, "stored result reused")
	if calls := env.llmCalls.Load(); calls != 1 {
		t.Fatalf("expected a single model call, got %d", calls)
	}

	if _, err := runCLI(t, env, "", "analyze", abcInput, "-A"); err != nil {
		t.Fatalf("forced analyze: %v", err)
	}
	if calls := env.llmCalls.Load(); calls != 2 {
		t.Fatalf("--force-analysis should call the model again, got %d", calls)
	}
}

func TestAnalyzeSchemaViolationReportsRawResponse(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedTranscript(t, "ABC123", "Hello everyone welcome back")
	raw := `{"answer":"Yes","reasoning":"calls for violence","evidence":[]}`
	env.llmContent.Store(raw)

	_, err := runCLI(t, env, "", "analyze", abcInput)
	if !errors.Is(err, services.ErrSchemaViolation) {
		t.Fatalf("expected schema violation, got %v", err)
	}
	var buf bytes.Buffer
	reportError(&buf, err)
	requireContains(t, buf.String(), "Raw model response:")
	requireContains(t, buf.String(), raw)

	out, err := runCLI(t, env, "", "show", abcInput)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "not analyzed yet")
}

func TestAnalyzeInvalidIdentifier(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := runCLI(t, env, "", "analyze", "definitely not a video")
	if !errors.Is(err, services.ErrInvalidIdentifier) {
		t.Fatalf("expected invalid identifier, got %v", err)
	}
	if env.llmCalls.Load() != 0 {
		t.Fatal("no model call expected")
	}
}

func TestRootPromptsWhenNoArgument(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedTranscript(t, "ABC123", "Hello everyone welcome back")

	out, err := runCLI(t, env, "\n")
	if err != nil {
		t.Fatalf("root with blank input: %v", err)
	}
	requireContains(t, out, "YouTube URL or video id:")
	requireContains(t, out, "Usage:")

	out, err = runCLI(t, env, abcInput+"\n")
	if err != nil {
		t.Fatalf("root with prompted input: %v", err)
	}
	requireContains(t, out, "NO")
}

func TestExtractCachedTranscript(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedTranscript(t, "ABC123", "Hello everyone welcome back")

	out, err := runCLI(t, env, "", "extract", abcInput)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "already stored")
	requireContains(t, out, "Test Title")
}

func TestListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "", "list")
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	requireContains(t, out, "No transcripts stored yet")

	env.seedTranscript(t, "ABC123", "Hello everyone welcome back")
	env.seedTranscript(t, "dQw4w9WgXcQ", "never gonna give you up")
	if _, err := runCLI(t, env, "", "analyze", abcInput); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	out, err = runCLI(t, env, "", "list", "-n", "5")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "ABC123")
	requireContains(t, out, "dQw4w9WgXcQ")
	requireContains(t, out, "No")

	out, err = runCLI(t, env, "", "list", "--json")
	if err != nil {
		t.Fatalf("list json: %v", err)
	}
	var entries []listEntryJSON
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}

	out, err = runCLI(t, env, "", "show", abcInput, "--json")
	if err != nil {
		t.Fatalf("show json: %v", err)
	}
	var shown showJSON
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode show: %v", err)
	}
	if shown.Verdict == nil || shown.Verdict.Answer != store.AnswerNo || shown.Stale {
		t.Fatalf("unexpected show payload %+v", shown)
	}
	if _, err := os.Stat(shown.VerdictPath); err != nil {
		t.Fatalf("verdict mirror missing: %v", err)
	}

	out, err = runCLI(t, env, "", "show", abcInput)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "English (en)", "NO", "no incitement found")

	if _, err := runCLI(t, env, "", "show", "zzzzzzzzzzz"); !errors.Is(err, services.ErrTranscriptUnavailable) {
		t.Fatalf("expected unavailable for unknown id, got %v", err)
	}
	if _, err := runCLI(t, env, "", "list", "-n", "-1"); err == nil {
		t.Fatal("negative limit should be rejected")
	}
}

func TestCheckOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, env, "", "check", "--offline")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Data directory")
	requireContains(t, out, "fallback disabled")
	requireContains(t, out, env.configPath)
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, env, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, err := runCLI(t, env, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}
}

func TestLogsFiltersByVideo(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	content := strings.Join([]string{
		`{"ts":"2026-01-02T03:04:05Z","level":"info","msg":"run completed","video_id":"ABC123","stage":"analyze","correlation_id":"run-1","answer":"No"}`,
		`{"ts":"2026-01-02T03:05:05Z","level":"error","msg":"run failed","video_id":"dQw4w9WgXcQ","correlation_id":"run-2","error_kind":"rate_limited"}`,
	}, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(env.cfg.Paths.LogDir, "rhetoric.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, err := runCLI(t, env, "", "logs", abcInput)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "[Video ABC123 (analyze)] run completed", "answer=No", "run=run-1")
	if strings.Contains(out, "dQw4w9WgXcQ") {
		t.Fatalf("filter leaked other video:\n%s", out)
	}

	out, err = runCLI(t, env, "", "logs", "--level", "error", "--raw")
	if err != nil {
		t.Fatalf("logs --level: %v", err)
	}
	if strings.TrimSpace(out) != strings.Split(strings.TrimSpace(content), "\n")[1] {
		t.Fatalf("expected only the raw error line, got:\n%s", out)
	}

	out, err = runCLI(t, env, "", "logs", "--search", "quota")
	if err != nil {
		t.Fatalf("logs --search: %v", err)
	}
	requireContains(t, out, "No matching log entries")
}
