package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rhetoric/internal/logging"
)

// ChainFetcher tries transcript sources in order and returns the first
// success.
type ChainFetcher struct {
	fetchers []TranscriptFetcher
	logger   *slog.Logger
}

// NewChainFetcher builds a chain; nil fetchers are ignored.
func NewChainFetcher(logger *slog.Logger, fetchers ...TranscriptFetcher) *ChainFetcher {
	chain := &ChainFetcher{logger: logging.NewComponentLogger(logger, "transcript-fetch")}
	for _, f := range fetchers {
		if f != nil {
			chain.fetchers = append(chain.fetchers, f)
		}
	}
	return chain
}

// Fetch implements TranscriptFetcher. When every source fails the most
// specific error wins: not found, then captions disabled, then rate limited.
func (c *ChainFetcher) Fetch(ctx context.Context, videoID string) (Transcript, error) {
	if len(c.fetchers) == 0 {
		return Transcript{}, errors.New("no transcript sources configured")
	}
	var best error
	for i, f := range c.fetchers {
		t, err := f.Fetch(ctx, videoID)
		if err == nil {
			return t, nil
		}
		if ctx.Err() != nil {
			return Transcript{}, ctx.Err()
		}
		c.logger.Debug("transcript source failed",
			logging.Int("source_index", i),
			logging.String(logging.FieldVideoID, videoID),
			logging.Error(err),
		)
		if best == nil || errorRank(err) > errorRank(best) {
			best = err
		}
	}
	return Transcript{}, best
}

func errorRank(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 3
	case errors.Is(err, ErrCaptionsDisabled):
		return 2
	case errors.Is(err, ErrRateLimited):
		return 1
	}
	return 0
}

// ChainMetadata merges metadata sources in order until both fields are known.
type ChainMetadata struct {
	fetchers []MetadataFetcher
	logger   *slog.Logger
}

// NewChainMetadata builds a metadata chain; nil fetchers are ignored.
func NewChainMetadata(logger *slog.Logger, fetchers ...MetadataFetcher) *ChainMetadata {
	chain := &ChainMetadata{logger: logging.NewComponentLogger(logger, "metadata-fetch")}
	for _, f := range fetchers {
		if f != nil {
			chain.fetchers = append(chain.fetchers, f)
		}
	}
	return chain
}

// Metadata implements MetadataFetcher. It returns an error only when no
// source produced any field.
func (c *ChainMetadata) Metadata(ctx context.Context, videoID string) (Metadata, error) {
	var merged Metadata
	var errs []error
	for _, f := range c.fetchers {
		m, err := f.Metadata(ctx, videoID)
		if err != nil {
			if ctx.Err() != nil {
				return merged, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		if merged.Title == "" {
			merged.Title = m.Title
		}
		if merged.Channel == "" {
			merged.Channel = m.Channel
		}
		if merged.Complete() {
			return merged, nil
		}
	}
	if merged.Title == "" && merged.Channel == "" {
		if len(errs) == 0 {
			return merged, fmt.Errorf("no metadata for %s", videoID)
		}
		return merged, errors.Join(errs...)
	}
	return merged, nil
}
