// Package logs reads the JSON log file written under paths.log_dir.
//
// Tail returns the last N matching lines or everything after a byte offset,
// optionally waiting for new lines. Filter narrows lines to one video, run,
// stage, or minimum level using the structured fields the logging package
// attaches to every record.
package logs
