package videoid_test

import (
	"errors"
	"testing"

	"rhetoric/internal/services"
	"rhetoric/internal/videoid"
)

func TestResolveEquivalentForms(t *testing.T) {
	const want = videoid.ID("dQw4w9WgXcQ")
	inputs := []string{
		"dQw4w9WgXcQ",
		"  dQw4w9WgXcQ\n",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL123",
		"http://m.youtube.com/watch?feature=share&v=dQw4w9WgXcQ",
		"https://music.youtube.com/watch?v=dQw4w9WgXcQ",
		"www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=10",
		"youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?start=3",
		"https://www.youtube.com/v/dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ",
		"https://www.youtube.com/live/dQw4w9WgXcQ?si=abc",
	}
	for _, input := range inputs {
		got, err := videoid.Resolve(input)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestResolveQueryParameterOnOtherHost(t *testing.T) {
	got, err := videoid.Resolve("https://example.com/watch?v=ABC123")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "ABC123" {
		t.Fatalf("got %q, want ABC123", got)
	}
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"short",
		"dQw4w9WgXcQ-too-long",
		"bad!chars!!",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/channel/UC123",
		"https://youtu.be/",
		"https://example.com/page",
		"https://example.com/watch?v=<script>",
	}
	for _, input := range inputs {
		_, err := videoid.Resolve(input)
		if err == nil {
			t.Fatalf("Resolve(%q) expected error", input)
		}
		if !errors.Is(err, services.ErrInvalidIdentifier) {
			t.Fatalf("Resolve(%q) error %v not marked invalid identifier", input, err)
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	first, err := videoid.Resolve("https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := videoid.Resolve(first.String())
	if err != nil {
		t.Fatalf("Resolve of canonical id: %v", err)
	}
	if first != second {
		t.Fatalf("expected idempotent resolve, got %q then %q", first, second)
	}
}
