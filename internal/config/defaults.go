package config

const (
	defaultConfigPath            = "~/.config/rhetoric/config.toml"
	projectConfigName            = "rhetoric.toml"
	defaultDataDir               = "~/.local/share/rhetoric"
	defaultDatabaseName          = "rhetoric.db"
	defaultTranscriptsDirName    = "transcripts"
	defaultResultsDirName        = "individual_results"
	defaultLogDirName            = "logs"
	defaultLLMBaseURL            = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel              = "gpt-5"
	defaultLLMReferer            = "https://github.com/rhetoric/rhetoric"
	defaultLLMTitle              = "rhetoric"
	defaultLLMTimeoutSeconds     = 120
	defaultLLMRetryAttempts      = 5
	defaultYTDLPBinary           = "yt-dlp"
	defaultRequestsPerSecond     = 2.0
	defaultRequestTimeoutSeconds = 30
	defaultAnalysisTimeout       = 300
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

var defaultLanguages = []string{"en", "en-GB", "en-US"}

// Default returns a Config populated with repository defaults. Derived paths
// (database, mirrors, logs) are filled from the data directory during normalize.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		YouTube: YouTube{
			Languages:             append([]string(nil), defaultLanguages...),
			YTDLPBinary:           defaultYTDLPBinary,
			RequestsPerSecond:     defaultRequestsPerSecond,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Analysis: Analysis{
			TimeoutSeconds: defaultAnalysisTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
