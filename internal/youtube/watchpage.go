package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// SourceWatchPage identifies transcripts scraped from the watch page.
const SourceWatchPage = "watch_page"

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Tracklist struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	VideoDetails struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	} `json:"videoDetails"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// WatchPageFetcher scrapes caption tracks from the public watch page.
type WatchPageFetcher struct {
	client    *Client
	languages []string
}

// NewWatchPageFetcher returns a fetcher preferring the given caption
// languages in order.
func NewWatchPageFetcher(client *Client, languages []string) *WatchPageFetcher {
	return &WatchPageFetcher{client: client, languages: languages}
}

// Fetch implements TranscriptFetcher.
func (f *WatchPageFetcher) Fetch(ctx context.Context, videoID string) (Transcript, error) {
	player, err := f.player(ctx, videoID)
	if err != nil {
		return Transcript{}, err
	}
	if err := playabilityError(player); err != nil {
		return Transcript{}, err
	}

	tracks := player.Captions.Tracklist.CaptionTracks
	if len(tracks) == 0 {
		return Transcript{}, fmt.Errorf("%w: no caption tracks for %s", ErrCaptionsDisabled, videoID)
	}
	track, ok := pickTrack(tracks, f.languages)
	if !ok {
		return Transcript{}, fmt.Errorf("%w: only token-protected caption tracks for %s", ErrCaptionsDisabled, videoID)
	}

	body, err := f.client.get(ctx, f.absolute(track.BaseURL), maxTimedTextBytes)
	if err != nil {
		return Transcript{}, fmt.Errorf("fetch timed text: %w", err)
	}
	segments, err := parseTimedText(body)
	if err != nil {
		return Transcript{}, err
	}
	if len(segments) == 0 {
		return Transcript{}, fmt.Errorf("%w: caption track for %s is empty", ErrCaptionsDisabled, videoID)
	}
	return Transcript{Segments: segments, Language: track.LanguageCode, Source: SourceWatchPage}, nil
}

// Metadata implements MetadataFetcher from the player response's video
// details.
func (f *WatchPageFetcher) Metadata(ctx context.Context, videoID string) (Metadata, error) {
	page, err := f.page(ctx, videoID)
	if err != nil {
		return Metadata{}, err
	}
	meta := parsePageMeta(page)
	if meta.Complete() {
		return meta, nil
	}
	if raw := extractJSON(page, playerResponseMarker); raw != nil {
		var player playerResponse
		if json.Unmarshal(raw, &player) == nil {
			if meta.Title == "" {
				meta.Title = strings.TrimSpace(player.VideoDetails.Title)
			}
			if meta.Channel == "" {
				meta.Channel = strings.TrimSpace(player.VideoDetails.Author)
			}
		}
	}
	return meta, nil
}

func (f *WatchPageFetcher) page(ctx context.Context, videoID string) ([]byte, error) {
	target := f.client.BaseURL() + "/watch?v=" + url.QueryEscape(videoID) + "&hl=en"
	page, err := f.client.get(ctx, target, maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}
	if bytes.Contains(page, []byte("www.google.com/recaptcha")) {
		return nil, fmt.Errorf("%w: watch page served a captcha", ErrRateLimited)
	}
	return page, nil
}

func (f *WatchPageFetcher) player(ctx context.Context, videoID string) (*playerResponse, error) {
	page, err := f.page(ctx, videoID)
	if err != nil {
		return nil, err
	}
	raw := extractJSON(page, playerResponseMarker)
	if raw == nil {
		return nil, fmt.Errorf("%w: no player response in watch page for %s", ErrNotFound, videoID)
	}
	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	return &player, nil
}

func (f *WatchPageFetcher) absolute(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return f.client.BaseURL() + "/" + strings.TrimPrefix(ref, "/")
}

func playabilityError(p *playerResponse) error {
	status := p.PlayabilityStatus.Status
	reason := strings.TrimSpace(p.PlayabilityStatus.Reason)
	switch status {
	case "", "OK":
		return nil
	case "LOGIN_REQUIRED":
		if strings.Contains(strings.ToLower(reason), "not a bot") {
			return fmt.Errorf("%w: %s", ErrRateLimited, reason)
		}
		return fmt.Errorf("%w: %s", ErrNotFound, reason)
	case "ERROR", "UNPLAYABLE":
		return fmt.Errorf("%w: %s", ErrNotFound, reason)
	default:
		// LIVE_STREAM_OFFLINE and friends may still carry captions.
		if len(p.Captions.Tracklist.CaptionTracks) > 0 {
			return nil
		}
		return fmt.Errorf("%w: playability %s: %s", ErrCaptionsDisabled, status, reason)
	}
}

// extractJSON returns the balanced JSON object that follows marker in page,
// or nil when none is found.
func extractJSON(page []byte, marker string) []byte {
	idx := bytes.Index(page, []byte(marker))
	if idx < 0 {
		return nil
	}
	start := idx + len(marker)
	for start < len(page) && page[start] != '{' {
		if page[start] != ' ' {
			return nil
		}
		start++
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(page); i++ {
		ch := page[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return page[start : i+1]
			}
		}
	}
	return nil
}
