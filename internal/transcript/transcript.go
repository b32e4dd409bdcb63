// Package transcript returns a persisted transcript for a video, fetching and
// committing one when the cache has none or a refresh is forced.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"rhetoric/internal/logging"
	"rhetoric/internal/services"
	"rhetoric/internal/store"
	"rhetoric/internal/textutil"
	"rhetoric/internal/videoid"
	"rhetoric/internal/youtube"
)

// Provenance says whether a record was reused or produced in this run.
type Provenance string

const (
	ProvenanceCache Provenance = "cache"
	ProvenanceFresh Provenance = "fresh"
)

// Result is the outcome of GetOrFetch.
type Result struct {
	Transcript store.Transcript
	Source     Provenance
	// Changed is true when a fetch produced text that differs from the
	// previous row, or when there was no previous row.
	Changed  bool
	Warnings []string
}

// Store fronts the transcript table with a fetcher.
type Store struct {
	db       *store.Store
	fetcher  youtube.TranscriptFetcher
	metadata youtube.MetadataFetcher
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.NewComponentLogger(logger, "transcript")
	}
}

// WithClock overrides the fetch timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store. metadata may be nil, in which case placeholder title
// and channel values are recorded.
func New(db *store.Store, fetcher youtube.TranscriptFetcher, metadata youtube.MetadataFetcher, opts ...Option) *Store {
	s := &Store{
		db:       db,
		fetcher:  fetcher,
		metadata: metadata,
		logger:   logging.NewComponentLogger(nil, "transcript"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrFetch returns the stored transcript for id. When force is false and a
// row exists it is returned unchanged; otherwise the transcript is fetched,
// joined, and committed with its mirror file. A failed fetch leaves prior
// state untouched.
func (s *Store) GetOrFetch(ctx context.Context, id videoid.ID, force bool) (Result, error) {
	key := string(id)
	logger := logging.WithContext(services.WithVideoID(ctx, key), s.logger)
	previous, err := s.db.GetTranscript(ctx, key)
	if err != nil {
		return Result{}, err
	}
	if previous != nil && !force {
		res := Result{Transcript: *previous, Source: ProvenanceCache}
		res.Warnings = s.repairMirror(ctx, logger, previous)
		logger.Debug("transcript cache hit",
			logging.String("content_hash", previous.ContentHash),
		)
		return res, nil
	}

	fetched, err := s.fetcher.Fetch(ctx, key)
	if err != nil {
		return Result{}, fetchError(key, err)
	}
	text := JoinSegments(fetched.Segments)
	if text == "" {
		return Result{}, services.Wrap(services.ErrTranscriptUnavailable, "transcript", "fetch", key+": transcript is empty", nil)
	}

	meta, warnings := s.lookupMetadata(ctx, logger, key)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	rec := &store.Transcript{
		VideoID:      key,
		Title:        meta.Title,
		Channel:      meta.Channel,
		Text:         text,
		SegmentCount: len(fetched.Segments),
		Language:     fetched.Language,
		Source:       fetched.Source,
		FetchedAt:    s.now(),
	}
	if err := s.db.SaveTranscript(ctx, rec); err != nil {
		return Result{}, err
	}

	changed := previous == nil || previous.ContentHash != rec.ContentHash
	logger.Info("transcript stored",
		logging.String(logging.FieldEventType, "transcript_stored"),
		logging.String("source", rec.Source),
		logging.String("language", rec.Language),
		logging.Int("segments", rec.SegmentCount),
		logging.Int("characters", len(rec.Text)),
		logging.Bool("changed", changed),
		logging.String("content_hash", rec.ContentHash),
	)
	for _, w := range warnings {
		logging.WarnWithContext(logger, w, "metadata_fallback",
			logging.String(logging.FieldErrorHint, "title and channel are display only; re-extract later to refresh them"),
			logging.String(logging.FieldImpact, "placeholder title or channel stored"),
		)
	}
	return Result{Transcript: *rec, Source: ProvenanceFresh, Changed: changed, Warnings: warnings}, nil
}

// JoinSegments orders segments by start time, keeping source order for ties,
// and joins their whitespace-collapsed text with single spaces.
func JoinSegments(segments []youtube.Segment) string {
	ordered := make([]youtube.Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})
	parts := make([]string, 0, len(ordered))
	for _, seg := range ordered {
		if text := textutil.CollapseWhitespace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func (s *Store) repairMirror(ctx context.Context, logger *slog.Logger, t *store.Transcript) []string {
	repaired, err := s.db.RepairTranscriptMirror(ctx, t)
	switch {
	case err != nil:
		msg := "transcript mirror could not be regenerated"
		logging.WarnWithContext(logger, msg, "mirror_repair_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the transcripts directory"),
			logging.String(logging.FieldImpact, "database row is intact; mirror file is stale"),
		)
		return []string{msg}
	case repaired:
		msg := "transcript mirror was missing or stale and has been regenerated"
		logging.WarnWithContext(logger, msg, "mirror_repaired",
			logging.String(logging.FieldImpact, "none; mirror rewritten from database row"),
		)
		return []string{msg}
	}
	return nil
}

// lookupMetadata consults the metadata cache, then the fetcher. Missing fields
// fall back to placeholders with a warning.
func (s *Store) lookupMetadata(ctx context.Context, logger *slog.Logger, id string) (youtube.Metadata, []string) {
	var meta youtube.Metadata
	var warnings []string

	cached, err := s.db.GetMetadata(ctx, id)
	if err != nil {
		logger.Debug("metadata cache read failed", logging.Error(err))
	}
	if cached != nil {
		meta = youtube.Metadata{Title: cached.Title, Channel: cached.Channel}
	}

	if !meta.Complete() && s.metadata != nil {
		fetched, err := s.metadata.Metadata(ctx, id)
		if err != nil {
			logger.Debug("metadata lookup failed", logging.Error(err))
		}
		if meta.Title == "" {
			meta.Title = fetched.Title
		}
		if meta.Channel == "" {
			meta.Channel = fetched.Channel
		}
		if fetched.Title != "" || fetched.Channel != "" {
			if err := s.db.SaveMetadata(ctx, &store.Metadata{VideoID: id, Title: meta.Title, Channel: meta.Channel, FetchedAt: s.now()}); err != nil {
				logger.Debug("metadata cache write failed", logging.Error(err))
			}
		}
	}

	if meta.Title == "" {
		meta.Title = FallbackTitle(id)
		warnings = append(warnings, "video title unavailable; stored placeholder")
	}
	if meta.Channel == "" {
		meta.Channel = FallbackChannel
		warnings = append(warnings, "channel name unavailable; stored placeholder")
	}
	return meta, warnings
}

// FallbackChannel is recorded when no channel name could be found.
const FallbackChannel = "Unknown Channel"

// FallbackTitle is recorded when no title could be found.
func FallbackTitle(id string) string {
	return fmt.Sprintf("Unknown Title – %s", id)
}

func fetchError(id string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "transcript", "fetch", id, err)
	case errors.Is(err, youtube.ErrRateLimited):
		return services.Wrap(services.ErrRateLimited, "transcript", "fetch", id, err)
	}
	return services.Wrap(services.ErrTranscriptUnavailable, "transcript", "fetch", id, err)
}
