// Package llm provides an OpenAI-compatible chat completions client that
// requests schema-constrained JSON.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteSchema: send system/user prompts with a strict JSON schema
// response format, receive the raw content plus model and token usage.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: decode model output, tolerating code fences and prose.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, network timeouts, and empty
// content with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Retry-After is honoured up to the max delay. Context cancellation
// aborts retries immediately.
//
// # Errors
//
// Exhausted or non-retryable failures carry a services marker: 429 maps to
// ErrRateLimited, 408 and timeouts to ErrTimeout, 5xx and empty content to
// ErrTransient, and 401/403/404 to ErrConfiguration. A refusal is not an
// error; it is returned in Completion.Refusal for the caller to judge.
package llm
