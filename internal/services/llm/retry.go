package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rhetoric/internal/logging"
	"rhetoric/internal/services"
)

func (c *Client) completionWithRetry(ctx context.Context, payload chatCompletionRequest, op string) (Completion, error) {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, body, err := c.sendChatRequestOnce(ctx, payload)
		if err == nil {
			content, finishReason := extractCompletionPayload(resp)
			if content != "" {
				return newCompletion(resp, c.cfg.Model, content, "", finishReason), nil
			}
			if refusal := extractCompletionRefusal(resp); refusal != "" {
				return newCompletion(resp, c.cfg.Model, "", refusal, finishReason), nil
			}
			if len(resp.Choices) == 0 {
				err = &emptyContentError{Op: op, FinishReason: "no_choices", Snippet: summarizePayloadSnippet(string(body))}
			} else {
				err = &emptyContentError{Op: op, FinishReason: finishReason, Snippet: summarizePayloadSnippet(string(body))}
			}
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		c.logger.Debug("retrying llm request",
			logging.String("op", op),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return Completion{}, markError(op, err)
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return Completion{}, markError(op, lastErr)
}

// markError tags err with the services marker matching its cause.
func markError(op string, err error) error {
	var statusErr *httpStatusError
	var emptyErr *emptyContentError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "llm", op, "deadline exceeded", err)
	case errors.As(err, &statusErr):
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return services.Wrap(services.ErrRateLimited, "llm", op, "", err)
		case statusErr.StatusCode == http.StatusRequestTimeout:
			return services.Wrap(services.ErrTimeout, "llm", op, "", err)
		case statusErr.StatusCode >= http.StatusInternalServerError:
			return services.Wrap(services.ErrTransient, "llm", op, "", err)
		case statusErr.StatusCode == http.StatusUnauthorized,
			statusErr.StatusCode == http.StatusForbidden,
			statusErr.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrConfiguration, "llm", op, "check api key, model, and base_url", err)
		}
	case errors.As(err, &emptyErr):
		return services.Wrap(services.ErrTransient, "llm", op, "", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return services.Wrap(services.ErrTimeout, "llm", op, "", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var emptyErr *emptyContentError
	if errors.As(err, &emptyErr) {
		return c.backoffDelay(attempt), true
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := defaultRetryBaseDelay
	maxDelay := defaultRetryMaxDelay
	if c != nil {
		if c.retryBaseDelay >= 0 {
			base = c.retryBaseDelay
		}
		if c.retryMaxDelay > 0 {
			maxDelay = c.retryMaxDelay
		}
	}
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := defaultRetryMaxDelay
	if c != nil && c.retryMaxDelay > 0 {
		maxDelay = c.retryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
