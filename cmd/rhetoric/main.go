package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"rhetoric/internal/classifier"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			reportError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportError prints err and, for schema violations, the model reply that
// failed validation.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var violation *classifier.SchemaViolationError
	if errors.As(err, &violation) && violation.Raw != "" {
		fmt.Fprintf(w, "Raw model response:\n%s\n", violation.Raw)
	}
}
