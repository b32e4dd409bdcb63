package logs_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rhetoric/internal/logs"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rhetoric.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a", "b", "c")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != int64(len("a\nb\nc\n")) {
		t.Fatalf("expected offset at end of file, got %d", result.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "absent.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestTailFiltersByVideo(t *testing.T) {
	path := writeLog(t,
		`{"time":"2026-01-02T03:04:05Z","level":"INFO","msg":"run completed","video_id":"dQw4w9WgXcQ","correlation_id":"run-1"}`,
		`{"time":"2026-01-02T03:04:06Z","level":"INFO","msg":"run completed","video_id":"ABC123","correlation_id":"run-2"}`,
		`{"time":"2026-01-02T03:04:07Z","level":"WARN","msg":"evidence not found","video_id":"ABC123","correlation_id":"run-2"}`,
		"not json",
	)

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: -1,
		Limit:  10,
		Filter: logs.Filter{VideoID: "ABC123"},
	})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected two ABC123 lines, got %#v", result.Lines)
	}

	result, err = logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: 0,
		Filter: logs.Filter{MinLevel: slog.LevelWarn, HasLevel: true},
	})
	if err != nil {
		t.Fatalf("tail from offset: %v", err)
	}
	if len(result.Lines) != 1 || !strings.Contains(result.Lines[0], "evidence not found") {
		t.Fatalf("expected only the warning, got %#v", result.Lines)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("expected initial line, got %#v", result.Lines)
	}

	done := make(chan struct{})
	go func(offset int64) {
		defer close(done)
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Errorf("unexpected follow lines: %#v", res.Lines)
		}
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}
