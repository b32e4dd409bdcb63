// Package language normalizes caption language preferences to canonical
// BCP 47 tags and renders them for display.
package language
