package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"rhetoric/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrPersistence, "store", "commit", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"store", "commit", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

type classified struct{}

func (classified) Error() string     { return "classified" }
func (classified) ErrorKind() string { return "custom" }

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err       error
		kind      string
		retryable bool
	}{
		{services.Wrap(services.ErrInvalidIdentifier, "videoid", "resolve", "bad", nil), services.KindInvalidIdentifier, false},
		{services.Wrap(services.ErrTranscriptUnavailable, "transcript", "fetch", "", nil), services.KindTranscriptUnavailable, false},
		{services.Wrap(services.ErrRateLimited, "llm", "complete", "", nil), services.KindRateLimited, true},
		{services.Wrap(services.ErrTimeout, "llm", "complete", "", nil), services.KindTimeout, true},
		{services.Wrap(services.ErrSchemaViolation, "classifier", "validate", "", nil), services.KindSchemaViolation, false},
		{services.Wrap(nil, "x", "y", "", nil), services.KindTransient, true},
		{fmt.Errorf("outer: %w", classified{}), "custom", false},
		{fmt.Errorf("run: %w", context.Canceled), services.KindCanceled, false},
		{context.DeadlineExceeded, services.KindTimeout, true},
		{errors.New("plain"), services.KindUnknown, false},
	}
	for _, tt := range tests {
		if got := services.Kind(tt.err); got != tt.kind {
			t.Fatalf("Kind(%v) = %q, want %q", tt.err, got, tt.kind)
		}
		if got := services.Retryable(tt.err); got != tt.retryable {
			t.Fatalf("Retryable(%v) = %v, want %v", tt.err, got, tt.retryable)
		}
	}
	if services.Kind(nil) != "" {
		t.Fatal("expected empty kind for nil error")
	}
}
