// Package store persists transcripts, verdicts, and cached video metadata in
// SQLite, and mirrors each transcript and verdict to a per-video file.
//
// The relational row is authoritative. Every save runs the row upsert and the
// mirror write inside one transaction under a cross-process file lock: a failed
// mirror write rolls the row back, and a mirror left stale by a crash is
// detected by hash and regenerated from the row on the next read through
// RepairTranscriptMirror or RepairVerdictMirror. Mirrors are never read to
// decide cache hits.
//
// Schema changes bump the version in schema.go; older databases are rejected
// with ErrSchemaMismatch rather than migrated.
package store
