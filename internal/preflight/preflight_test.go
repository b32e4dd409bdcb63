package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rhetoric/internal/config"
	"rhetoric/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func healthServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "demo",
			"choices": []map[string]any{{"message": map[string]any{"content": `{"ok":true}`}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckLLM(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		status int
		pass   bool
		detail string
	}{
		{"reachable", "k", http.StatusOK, true, "API reachable"},
		{"bad key", "k", http.StatusUnauthorized, false, "rejected"},
		{"no key", "", http.StatusOK, false, "skipped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := healthServer(t, tt.status)
			result := CheckLLM(context.Background(), config.LLMConfig{APIKey: tt.key, BaseURL: srv.URL, Model: " demo "})
			if result.Passed != tt.pass || !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("unexpected result %+v", result)
			}
			if result.Name != "LLM demo" {
				t.Fatalf("expected check named after the client model, got %q", result.Name)
			}
		})
	}
}

func TestCheckYTDLP(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.YouTube.YTDLPBinary = "clearly-not-present-yt-dlp"
	missing := CheckYTDLP(context.Background(), cfg)
	if !missing.Passed || !missing.Optional || !strings.Contains(missing.Detail, "fallback disabled") {
		t.Fatalf("missing yt-dlp should pass as optional, got %+v", missing)
	}

	cfg.YouTube.YTDLPBinary = testsupport.WriteScript(t, testsupport.BaseDir(cfg), "yt-dlp", "echo 2025.02.01\n")
	found := CheckYTDLP(context.Background(), cfg)
	if !found.Passed || !strings.Contains(found.Detail, "2025.02.01") {
		t.Fatalf("expected version in detail, got %+v", found)
	}

	cfg.YouTube.CookiesPath = filepath.Join(testsupport.BaseDir(cfg), "cookies.txt")
	if res := CheckYTDLP(context.Background(), cfg); res.Passed {
		t.Fatalf("unreadable cookies should fail, got %+v", res)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, true); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll(t *testing.T) {
	srv := healthServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMBaseURL(srv.URL))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	cfg.YouTube.YTDLPBinary = "clearly-not-present-yt-dlp"

	results := RunAll(context.Background(), cfg, false)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d: %+v", len(results), results)
	}
	if Failed(results) {
		t.Fatalf("expected all required checks to pass: %+v", results)
	}

	offline := RunAll(context.Background(), cfg, true)
	if len(offline) != 5 {
		t.Fatalf("skipNetwork should drop the LLM check, got %d", len(offline))
	}

	cfg.LLM.APIKey = ""
	if !Failed(RunAll(context.Background(), cfg, true)) {
		t.Fatal("missing API key should fail preflight")
	}
}
