package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Validate ensures the configuration is usable. The API key is not required
// here so that cache-only commands (list, show) work without credentials; the
// classifier enforces it via RequireLLM.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireLLM reports an actionable error when no API key is configured.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'rhetoric config init')", defaultPath)
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.Database) == "" {
		return errors.New("paths.database must be set")
	}
	if c.Paths.TranscriptsDir == c.Paths.ResultsDir {
		return errors.New("paths.transcripts_dir and paths.results_dir must differ")
	}
	return nil
}

func (c *Config) validateLLM() error {
	parsed, err := url.Parse(c.LLM.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("llm.base_url must be an absolute URL, got %q", c.LLM.BaseURL)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.RetryAttempts < 0 {
		return errors.New("llm.retry_attempts must be positive")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.RequestsPerSecond < 0 {
		return errors.New("youtube.requests_per_second must be positive")
	}
	if c.YouTube.RequestTimeoutSeconds < 0 {
		return errors.New("youtube.request_timeout_seconds must be positive")
	}
	if c.YouTube.HTTPSProxy != "" {
		if _, err := url.Parse(c.YouTube.HTTPSProxy); err != nil {
			return fmt.Errorf("youtube.https_proxy: %w", err)
		}
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.TimeoutSeconds < 0 {
		return errors.New("analysis.timeout_seconds must be positive")
	}
	if c.Analysis.PromptFile != "" {
		info, err := os.Stat(c.Analysis.PromptFile)
		if err != nil {
			return fmt.Errorf("analysis.prompt_file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("analysis.prompt_file %q is a directory", c.Analysis.PromptFile)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
