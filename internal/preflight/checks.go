package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"rhetoric/internal/config"
	"rhetoric/internal/deps"
	"rhetoric/internal/services"
	"rhetoric/internal/services/llm"
)

const llmCheckTimeout = 30 * time.Second

// CheckAPIKey reports whether an LLM API key is configured.
func CheckAPIKey(cfg config.LLMConfig) Result {
	const name = "LLM API key"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "missing (set llm.api_key or OPENAI_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It makes a single attempt under a 30-second timeout.
func CheckLLM(ctx context.Context, cfg config.LLMConfig) Result {
	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))
	name := "LLM " + client.Model()
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "skipped: API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckYTDLP reports whether the yt-dlp fallback is usable. Its absence is
// not a failure; the watch page source works without it.
func CheckYTDLP(ctx context.Context, cfg *config.Config) Result {
	statuses := deps.CheckVersions(ctx, []deps.Requirement{{
		Name:        "yt-dlp",
		Command:     cfg.YTDLPBinary(),
		Description: "Fallback transcript source",
		Optional:    true,
		VersionArgs: []string{"--version"},
	}})
	status := statuses[0]
	if !status.Available {
		return Result{Name: status.Name, Passed: true, Optional: true, Detail: status.Detail + " (fallback disabled)"}
	}
	detail := status.Path
	if status.Version != "" {
		detail = fmt.Sprintf("%s (%s)", status.Path, status.Version)
	}
	if cfg.YouTube.CookiesPath != "" {
		if _, err := os.Stat(cfg.YouTube.CookiesPath); err != nil {
			return Result{Name: status.Name, Optional: true, Detail: fmt.Sprintf("cookies file unreadable: %v", err)}
		}
		detail += ", cookies configured"
	}
	return Result{Name: status.Name, Passed: true, Optional: true, Detail: detail}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, services.ErrTimeout) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	if errors.Is(err, services.ErrConfiguration) {
		return "rejected: check llm.api_key, llm.model, and llm.base_url (" + err.Error() + ")"
	}
	return err.Error()
}
