package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rhetoric/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	if err := c.normalizeYouTube(); err != nil {
		return err
	}
	if err := c.normalizeAnalysis(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("RHETORIC_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = value
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	if value, ok := os.LookupEnv("DB_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Database = value
	}
	if value, ok := os.LookupEnv("TRANSCRIPTS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.TranscriptsDir = value
	}
	if value, ok := os.LookupEnv("RESULTS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ResultsDir = value
	}

	derived := []struct {
		key   string
		value *string
		name  string
	}{
		{"paths.database", &c.Paths.Database, defaultDatabaseName},
		{"paths.transcripts_dir", &c.Paths.TranscriptsDir, defaultTranscriptsDirName},
		{"paths.results_dir", &c.Paths.ResultsDir, defaultResultsDirName},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDirName},
	}
	for _, entry := range derived {
		if strings.TrimSpace(*entry.value) == "" {
			*entry.value = filepath.Join(c.Paths.DataDir, entry.name)
		}
		if *entry.value, err = expandPath(*entry.value); err != nil {
			return fmt.Errorf("%s: %w", entry.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	if value, ok := os.LookupEnv("OPENAI_MODEL"); ok && strings.TrimSpace(value) != "" {
		c.LLM.Model = value
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts == 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
}

func (c *Config) normalizeYouTube() error {
	if value, ok := os.LookupEnv("YOUTUBE_LANGS"); ok && strings.TrimSpace(value) != "" {
		c.YouTube.Languages = strings.Split(value, ",")
	}
	langs, err := language.Normalize(c.YouTube.Languages)
	if err != nil {
		return fmt.Errorf("youtube.languages: %w", err)
	}
	if len(langs) == 0 {
		langs = append(langs, defaultLanguages...)
	}
	c.YouTube.Languages = langs

	if c.YouTube.CookiesPath == "" {
		if value, ok := os.LookupEnv("YOUTUBE_COOKIES"); ok {
			c.YouTube.CookiesPath = value
		}
	}
	if strings.TrimSpace(c.YouTube.CookiesPath) != "" {
		var err error
		if c.YouTube.CookiesPath, err = expandPath(strings.TrimSpace(c.YouTube.CookiesPath)); err != nil {
			return fmt.Errorf("youtube.cookies_path: %w", err)
		}
	}
	if c.YouTube.HTTPSProxy == "" {
		if value, ok := os.LookupEnv("HTTPS_PROXY"); ok {
			c.YouTube.HTTPSProxy = value
		}
	}
	c.YouTube.HTTPSProxy = strings.TrimSpace(c.YouTube.HTTPSProxy)
	c.YouTube.YTDLPBinary = strings.TrimSpace(c.YouTube.YTDLPBinary)
	if c.YouTube.YTDLPBinary == "" {
		c.YouTube.YTDLPBinary = defaultYTDLPBinary
	}
	if c.YouTube.RequestsPerSecond == 0 {
		c.YouTube.RequestsPerSecond = defaultRequestsPerSecond
	}
	if c.YouTube.RequestTimeoutSeconds == 0 {
		c.YouTube.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeAnalysis() error {
	if strings.TrimSpace(c.Analysis.PromptFile) != "" {
		var err error
		if c.Analysis.PromptFile, err = expandPath(strings.TrimSpace(c.Analysis.PromptFile)); err != nil {
			return fmt.Errorf("analysis.prompt_file: %w", err)
		}
	}
	if c.Analysis.TimeoutSeconds == 0 {
		c.Analysis.TimeoutSeconds = defaultAnalysisTimeout
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
