// Package config loads, normalizes, and validates rhetoric configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY, OPENAI_MODEL, and YOUTUBE_LANGS. The Config type is built
// once per process and passed into constructors; nothing downstream reads the
// environment directly.
package config
