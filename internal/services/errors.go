package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidIdentifier     = errors.New("invalid identifier")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrRateLimited           = errors.New("rate limited")
	ErrTimeout               = errors.New("timeout")
	ErrSchemaViolation       = errors.New("schema violation")
	ErrPersistence           = errors.New("persistence error")
	ErrConfiguration         = errors.New("configuration error")
	ErrTransient             = errors.New("transient failure")
)

// Kind names used in logs and JSON output.
const (
	KindInvalidIdentifier     = "invalid_identifier"
	KindTranscriptUnavailable = "transcript_unavailable"
	KindRateLimited           = "rate_limited"
	KindTimeout               = "timeout"
	KindSchemaViolation       = "schema_violation"
	KindPersistence           = "persistence"
	KindConfiguration         = "configuration"
	KindTransient             = "transient"
	KindCanceled              = "canceled"
	KindUnknown               = "unknown"
)

// ErrorClassifier allows errors to declare their classification directly.
type ErrorClassifier interface {
	ErrorKind() string
}

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

var markerKinds = []struct {
	marker error
	kind   string
}{
	{ErrInvalidIdentifier, KindInvalidIdentifier},
	{ErrTranscriptUnavailable, KindTranscriptUnavailable},
	{ErrSchemaViolation, KindSchemaViolation},
	{ErrRateLimited, KindRateLimited},
	{ErrTimeout, KindTimeout},
	{ErrPersistence, KindPersistence},
	{ErrConfiguration, KindConfiguration},
	{ErrTransient, KindTransient},
}

// Kind maps an error to its taxonomy kind. Markers win over ErrorClassifier
// implementations; context cancellation is reported separately.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range markerKinds {
		if errors.Is(err, entry.marker) {
			return entry.kind
		}
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		if kind := strings.TrimSpace(classifier.ErrorKind()); kind != "" {
			return kind
		}
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// Retryable reports whether a caller could reasonably retry the operation later.
func Retryable(err error) bool {
	switch Kind(err) {
	case KindRateLimited, KindTimeout, KindTransient:
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
