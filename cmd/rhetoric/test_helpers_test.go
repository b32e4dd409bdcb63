package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"rhetoric/internal/config"
	"rhetoric/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	llmCalls   *atomic.Int32
	// llmContent is returned as the model message content.
	llmContent atomic.Value
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_MODEL", "YOUTUBE_LANGS", "YOUTUBE_COOKIES", "HTTPS_PROXY", "DB_PATH", "TRANSCRIPTS_DIR", "RESULTS_DIR", "RHETORIC_DATA_DIR"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{llmCalls: new(atomic.Int32)}
	env.llmContent.Store(`{"answer":"No","reasoning":"no incitement found","evidence":[]}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.llmCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "stub-model",
			"choices": []map[string]any{{"message": map[string]any{"content": env.llmContent.Load().(string)}}},
			"usage":   map[string]any{"total_tokens": 21},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithLLMBaseURL(srv.URL))
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	cfg.YouTube.YTDLPBinary = "clearly-not-present-yt-dlp"
	cfg.Logging.Level = "error"
	env.cfg = cfg

	env.configPath = filepath.Join(base, "rhetoric.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(env.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// seedTranscript stores a transcript for id so analyze never needs YouTube.
func (e *cliTestEnv) seedTranscript(t *testing.T, id, text string) {
	t.Helper()
	if err := e.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	st := testsupport.MustOpenStore(t, e.cfg)
	testsupport.SaveTranscript(t, st, id, text)
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, output string, substrs ...string) {
	t.Helper()
	for _, substr := range substrs {
		if !strings.Contains(output, substr) {
			t.Fatalf("expected %q to contain %q", output, substr)
		}
	}
}
