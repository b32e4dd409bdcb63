package testsupport

import (
	"context"
	"testing"
	"time"

	"rhetoric/internal/config"
	"rhetoric/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SaveTranscript persists a transcript row with the given text and returns it.
func SaveTranscript(t testing.TB, st *store.Store, videoID, text string) *store.Transcript {
	t.Helper()

	tr := &store.Transcript{
		VideoID:      videoID,
		Title:        "Test Title",
		Channel:      "Test Channel",
		Text:         text,
		SegmentCount: 1,
		Language:     "en",
		Source:       store.SourceWatchPage,
		FetchedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := st.SaveTranscript(context.Background(), tr); err != nil {
		t.Fatalf("store.SaveTranscript: %v", err)
	}
	return tr
}
