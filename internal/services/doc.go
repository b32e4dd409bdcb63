// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp video IDs, stage names, and correlation
//     identifiers for logging.
//   - The error taxonomy: sentinel markers, the Wrap helper, and Kind/Retryable
//     classification used by the orchestrator and CLI.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
