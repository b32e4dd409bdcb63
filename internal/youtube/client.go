package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"rhetoric/internal/config"
	"rhetoric/internal/logging"
)

const (
	defaultBaseURL   = "https://www.youtube.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	maxWatchPageBytes = 6 << 20
	maxTimedTextBytes = 4 << 20
	maxSmallBodyBytes = 512 << 10
)

// RetryConfig controls retries of throttled and 5xx responses.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig retries twice with a short exponential backoff.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  2,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Multiplier:  2.0,
}

// Client issues rate-limited GET requests against the video host.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	baseURL   string
	userAgent string
	retry     RetryConfig
	logger    *slog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL points watch page, timed text, and oEmbed requests at another host.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = rc
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "youtube")
	}
}

// NewClient builds a Client from the YouTube configuration section.
func NewClient(cfg config.YouTube, opts ...ClientOption) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy := strings.TrimSpace(cfg.HTTPSProxy); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse https proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := int(math.Ceil(rps))
	c := &Client{
		http:      &http.Client{Timeout: timeout, Transport: transport},
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		retry:     DefaultRetryConfig,
		logger:    logging.NewComponentLogger(nil, "youtube"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the host prefix used for requests.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type statusError struct {
	StatusCode int
	URL        string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// get fetches target and fails with ErrResponseTooLarge when the body exceeds
// limit bytes. 404 and 410
// map to ErrNotFound; 429 that survives retries maps to ErrRateLimited.
func (c *Client) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		body, err := c.getOnce(ctx, target, limit)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.retry.MaxRetries {
			break
		}
		wait := c.backoff(attempt)
		c.logger.Debug("retrying video host request",
			logging.Int("attempt", attempt+1),
			logging.Duration("wait", wait),
			logging.Error(err),
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	var se *statusError
	if errors.As(lastErr, &se) {
		switch {
		case se.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, lastErr)
		case se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusGone:
			return nil, fmt.Errorf("%w: %w", ErrNotFound, lastErr)
		}
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{StatusCode: resp.StatusCode, URL: redactQuery(target)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", redactQuery(target), err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: GET %s exceeds %d bytes", ErrResponseTooLarge, redactQuery(target), limit)
	}
	return body, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	mult := c.retry.Multiplier
	if mult <= 0 {
		mult = 2
	}
	wait := time.Duration(float64(c.retry.InitialWait) * math.Pow(mult, float64(attempt)))
	if c.retry.MaxWait > 0 && wait > c.retry.MaxWait {
		wait = c.retry.MaxWait
	}
	return wait
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// redactQuery drops query strings, which carry signed caption parameters.
func redactQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
