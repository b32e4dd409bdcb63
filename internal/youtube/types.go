package youtube

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a private, removed, or nonexistent video.
	ErrNotFound = errors.New("video not found")
	// ErrCaptionsDisabled reports a video with no usable caption track.
	ErrCaptionsDisabled = errors.New("captions unavailable")
	// ErrRateLimited reports throttling by the video host.
	ErrRateLimited = errors.New("rate limited by video host")
	// ErrResponseTooLarge reports a body over the per-request read limit.
	ErrResponseTooLarge = errors.New("video host response too large")
)

// Segment is one timed caption fragment. Start and Duration are seconds.
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

// Transcript is the ordered caption segments of one track.
type Transcript struct {
	Segments []Segment
	Language string
	// Source names the fetcher that produced the segments.
	Source string
}

// Metadata holds display fields for a video. Either field may be empty.
type Metadata struct {
	Title   string
	Channel string
}

// Complete reports whether both fields are populated.
func (m Metadata) Complete() bool {
	return m.Title != "" && m.Channel != ""
}

// TranscriptFetcher retrieves caption segments for a video ID.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (Transcript, error)
}

// MetadataFetcher retrieves display metadata for a video ID.
type MetadataFetcher interface {
	Metadata(ctx context.Context, videoID string) (Metadata, error)
}
