package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// OEmbedFetcher reads title and channel from the public oEmbed endpoint.
type OEmbedFetcher struct {
	client *Client
}

// NewOEmbedFetcher returns an oEmbed metadata source.
func NewOEmbedFetcher(client *Client) *OEmbedFetcher {
	return &OEmbedFetcher{client: client}
}

// Metadata implements MetadataFetcher.
func (f *OEmbedFetcher) Metadata(ctx context.Context, videoID string) (Metadata, error) {
	watch := "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
	target := f.client.BaseURL() + "/oembed?format=json&url=" + url.QueryEscape(watch)
	body, err := f.client.get(ctx, target, maxSmallBodyBytes)
	if err != nil {
		var se *statusError
		// Embedding-disabled and private videos answer 401 or 403.
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
			return Metadata{}, fmt.Errorf("%w: oembed: %w", ErrNotFound, err)
		}
		return Metadata{}, fmt.Errorf("oembed: %w", err)
	}
	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Metadata{}, fmt.Errorf("decode oembed: %w", err)
	}
	return Metadata{
		Title:   strings.TrimSpace(payload.Title),
		Channel: strings.TrimSpace(payload.AuthorName),
	}, nil
}
