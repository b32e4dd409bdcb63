// Package textutil normalizes caption and label text.
//
// Caption fragments arrive HTML-escaped, sometimes with inline markup, and in
// whatever Unicode composition the uploader's tooling produced. Normalize
// reduces them to NFC text with single spaces so that joined transcripts hash
// identically across fetches. FoldLabel is used when comparing free-form model
// output against a fixed vocabulary.
package textutil
