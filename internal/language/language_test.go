package language

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"canonical case", []string{"EN-gb", "en"}, "en-GB,en"},
		{"dedupe", []string{"de", " de ", "DE"}, "de"},
		{"blanks", []string{"", "  ", "fr"}, "fr"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if joined := strings.Join(got, ","); joined != tt.want {
				t.Fatalf("Normalize(%v) = %q, want %q", tt.input, joined, tt.want)
			}
		})
	}
}

func TestNormalizeRejectsInvalidTag(t *testing.T) {
	if _, err := Normalize([]string{"en", "not a tag!"}); err == nil {
		t.Fatal("expected error for invalid tag")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English (en)"},
		{"de", "German (de)"},
		{"", ""},
		{"???", "???"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.code); got != tt.want {
			t.Fatalf("DisplayName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
