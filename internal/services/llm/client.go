package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rhetoric/internal/logging"
	"rhetoric/internal/services"
)

const (
	jsonObjectResponseType = "json_object"
	jsonSchemaResponseType = "json_schema"
	defaultBaseURL         = "https://api.openai.com/v1/chat/completions"
	defaultHTTPTimeout     = 120 * time.Second
	defaultRetryMaxDelay   = 10 * time.Second
	defaultRetryBaseDelay  = 1 * time.Second
	defaultRetryAttempts   = 5
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client wraps an OpenAI-compatible chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "llm")
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			Referer:        strings.TrimSpace(cfg.Referer),
			Title:          strings.TrimSpace(cfg.Title),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logging.NewComponentLogger(nil, "llm"),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// SchemaRequest is a prompt pair plus the JSON schema the reply must follow.
type SchemaRequest struct {
	System     string
	User       string
	SchemaName string
	Schema     json.RawMessage
}

// Completion is the content returned by the model with its accounting.
type Completion struct {
	Content      string
	Refusal      string
	Model        string
	TokensUsed   int
	FinishReason string
}

// CompleteSchema issues a chat completion constrained by a strict JSON schema.
// It returns the model's raw content unparsed.
func (c *Client) CompleteSchema(ctx context.Context, req SchemaRequest) (Completion, error) {
	const op = "llm complete"
	system := strings.TrimSpace(req.System)
	user := strings.TrimSpace(req.User)
	if system == "" {
		return Completion{}, errors.New("llm complete: system prompt required")
	}
	if user == "" {
		return Completion{}, errors.New("llm complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return Completion{}, services.Wrap(services.ErrConfiguration, "llm", "complete", "api key required", nil)
	}
	if len(req.Schema) == 0 {
		return Completion{}, errors.New("llm complete: schema required")
	}
	name := strings.TrimSpace(req.SchemaName)
	if name == "" {
		name = "response"
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: responseFormat{
			Type: jsonSchemaResponseType,
			JSONSchema: &jsonSchemaFormat{
				Name:   name,
				Strict: true,
				Schema: req.Schema,
			},
		},
	}
	return c.completionWithRetry(ctx, payload, op)
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "llm", "health", "api key required", nil)
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You must respond with JSON only."},
			{Role: "user", Content: "Respond with {\"ok\":true}"},
		},
		ResponseFormat: responseFormat{Type: jsonObjectResponseType},
	}
	completion, err := c.completionWithRetry(ctx, payload, "llm health")
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(completion.Content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}
