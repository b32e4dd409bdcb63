package textutil

import "testing"

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Hello everyone", "Hello everyone"},
		{"  Hello \n\t everyone  ", "Hello everyone"},
	}
	for _, tt := range tests {
		if got := CollapseWhitespace(tt.in); got != tt.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"entities", "it&#39;s &amp; that", "it's & that"},
		{"tags", `<font color="#fff">loud</font> words`, "loud words"},
		{"newlines", "line one\nline two", "line one line two"},
		{"nfc", "cafe\u0301", "caf\u00e9"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFoldLabel(t *testing.T) {
	if FoldLabel("  Cannot   DETERMINE ") != FoldLabel("cannot determine") {
		t.Fatal("expected folded labels to match")
	}
	if FoldLabel("Yes") == FoldLabel("No") {
		t.Fatal("distinct labels must not fold together")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("abcdef", 4); got != "abc…" {
		t.Errorf("Truncate = %q, want abc…", got)
	}
	if got := Truncate("héllo", 2); got != "h…" {
		t.Errorf("Truncate runes = %q", got)
	}
}
