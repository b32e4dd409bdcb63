// Package classifier asks the language model for a verdict on one transcript
// and validates the reply.
//
// Transport failures are retried inside the llm client. Validation failures
// are never retried: they return *SchemaViolationError carrying the raw model
// output, and nothing downstream persists a verdict for them.
package classifier
