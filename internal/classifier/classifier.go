package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rhetoric/internal/logging"
	"rhetoric/internal/prompt"
	"rhetoric/internal/services"
	"rhetoric/internal/services/llm"
	"rhetoric/internal/store"
	"rhetoric/internal/textutil"
)

// Completer is the model transport. *llm.Client satisfies it.
type Completer interface {
	CompleteSchema(ctx context.Context, req llm.SchemaRequest) (llm.Completion, error)
}

// Response is a validated model verdict.
type Response struct {
	Answer     store.Answer
	Reasoning  string
	Evidence   []string
	Model      string
	TokensUsed int
	Raw        string
}

// SchemaViolationError reports a model reply that does not satisfy the
// response contract.
type SchemaViolationError struct {
	Reason string
	Raw    string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: %s", e.Reason)
}

// Unwrap ties the error to services.ErrSchemaViolation.
func (e *SchemaViolationError) Unwrap() error {
	return services.ErrSchemaViolation
}

// Client classifies prompt payloads.
type Client struct {
	completer Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// Option customizes the Client.
type Option func(*Client)

// WithTimeout bounds each Classify call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "classifier")
	}
}

// New returns a Client over completer.
func New(completer Completer, opts ...Option) *Client {
	c := &Client{completer: completer, logger: logging.NewComponentLogger(nil, "classifier")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify sends payload and validates the reply.
func (c *Client) Classify(ctx context.Context, payload prompt.Payload) (Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	started := time.Now()
	completion, err := c.completer.CompleteSchema(ctx, llm.SchemaRequest{
		System:     payload.System,
		User:       payload.User,
		SchemaName: payload.SchemaName,
		Schema:     payload.Schema,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded && !errors.Is(err, services.ErrTimeout) {
			return Response{}, services.Wrap(services.ErrTimeout, "classifier", "classify", "deadline exceeded", err)
		}
		return Response{}, err
	}
	if completion.Content == "" {
		return Response{}, &SchemaViolationError{Reason: "model refused to answer", Raw: completion.Refusal}
	}

	resp, err := Parse(completion.Content)
	if err != nil {
		return Response{}, err
	}
	resp.Model = completion.Model
	resp.TokensUsed = completion.TokensUsed
	c.logger.Debug("classification received",
		logging.String("answer", string(resp.Answer)),
		logging.Int("evidence_count", len(resp.Evidence)),
		logging.String("model", resp.Model),
		logging.Int("tokens_used", resp.TokensUsed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return resp, nil
}

// Parse validates raw model output. Model and TokensUsed are left zero.
func Parse(raw string) (Response, error) {
	violation := func(format string, args ...any) error {
		return &SchemaViolationError{Reason: fmt.Sprintf(format, args...), Raw: raw}
	}

	var fields map[string]json.RawMessage
	if err := llm.DecodeLLMJSON(raw, &fields); err != nil {
		return Response{}, violation("response is not a JSON object: %v", err)
	}

	answerRaw, ok := fields["answer"]
	if !ok {
		return Response{}, violation("answer is missing")
	}
	var answerText string
	if err := json.Unmarshal(answerRaw, &answerText); err != nil {
		return Response{}, violation("answer is not a string")
	}
	answer, ok := NormalizeAnswer(answerText)
	if !ok {
		return Response{}, violation("answer %q is not one of Yes, No, Cannot determine", answerText)
	}

	reasoningRaw, ok := fields["reasoning"]
	if !ok {
		return Response{}, violation("reasoning is missing")
	}
	var reasoning string
	if err := json.Unmarshal(reasoningRaw, &reasoning); err != nil || string(reasoningRaw) == "null" {
		return Response{}, violation("reasoning is not a string")
	}

	evidence := []string{}
	if evRaw, ok := fields["evidence"]; ok && string(evRaw) != "null" {
		var items []json.RawMessage
		if err := json.Unmarshal(evRaw, &items); err != nil {
			return Response{}, violation("evidence is not an array")
		}
		for i, item := range items {
			var quote string
			if err := json.Unmarshal(item, &quote); err != nil || string(item) == "null" {
				return Response{}, violation("evidence[%d] is not a string", i)
			}
			if quote = strings.TrimSpace(quote); quote != "" {
				evidence = append(evidence, quote)
			}
		}
	}

	if answer == store.AnswerYes && len(evidence) == 0 {
		return Response{}, violation("answer Yes requires at least one evidence quote")
	}

	return Response{
		Answer:    answer,
		Reasoning: strings.TrimSpace(reasoning),
		Evidence:  evidence,
		Raw:       raw,
	}, nil
}

// NormalizeAnswer maps free-form answer text to its canonical literal,
// ignoring case and surrounding or repeated whitespace.
func NormalizeAnswer(s string) (store.Answer, bool) {
	folded := textutil.FoldLabel(s)
	for _, a := range store.Answers {
		if folded == textutil.FoldLabel(string(a)) {
			return a, true
		}
	}
	return "", false
}

// UntraceableEvidence returns the quotes in evidence that do not appear
// verbatim in text. Whitespace runs and wrapping quotation marks are ignored.
func UntraceableEvidence(evidence []string, text string) []string {
	haystack := textutil.CollapseWhitespace(text)
	var missing []string
	for _, quote := range evidence {
		needle := textutil.CollapseWhitespace(strings.Trim(strings.TrimSpace(quote), "\"'“”‘’"))
		needle = strings.TrimSpace(needle)
		if needle == "" {
			continue
		}
		if !strings.Contains(haystack, needle) {
			missing = append(missing, quote)
		}
	}
	return missing
}
