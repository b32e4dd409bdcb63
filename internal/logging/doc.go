// Package logging assembles structured slog loggers and formatting helpers used
// across rhetoric.
//
// It owns the console and JSON handlers, the stderr plus log-file fanout, and
// context-aware helpers that tag lines with the video identifier, pipeline
// stage, and run correlation ID. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
