// Package verdict returns a persisted classification for a transcript,
// classifying and committing one when none is cached or a refresh is forced.
package verdict

import (
	"context"
	"log/slog"
	"time"

	"rhetoric/internal/classifier"
	"rhetoric/internal/logging"
	"rhetoric/internal/prompt"
	"rhetoric/internal/services"
	"rhetoric/internal/store"
	"rhetoric/internal/transcript"
	"rhetoric/internal/videoid"
)

// Classifier produces a validated response for a prompt payload.
type Classifier interface {
	Classify(ctx context.Context, payload prompt.Payload) (classifier.Response, error)
}

// Result is the outcome of GetOrAnalyze.
type Result struct {
	Verdict  store.Verdict
	Source   transcript.Provenance
	Warnings []string
}

// Store fronts the verdict table with a classifier.
type Store struct {
	db         *store.Store
	classifier Classifier
	promptOpts []prompt.Option
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.NewComponentLogger(logger, "verdict")
	}
}

// WithPromptOptions forwards options to prompt.Build.
func WithPromptOptions(opts ...prompt.Option) Option {
	return func(s *Store) {
		s.promptOpts = append(s.promptOpts, opts...)
	}
}

// WithClock overrides the analysis timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store.
func New(db *store.Store, c Classifier, opts ...Option) *Store {
	s := &Store{
		db:         db,
		classifier: c,
		logger:     logging.NewComponentLogger(nil, "verdict"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cached returns the stored verdict for id, or nil.
func (s *Store) Cached(ctx context.Context, id videoid.ID) (*store.Verdict, error) {
	return s.db.GetVerdict(ctx, string(id))
}

// GetOrAnalyze returns the stored verdict for id when force is false and one
// exists. Otherwise it classifies t and commits the verdict with its mirror.
// t must be the persisted transcript for id. Failures persist nothing.
func (s *Store) GetOrAnalyze(ctx context.Context, id videoid.ID, t store.Transcript, force bool) (Result, error) {
	key := string(id)
	logger := logging.WithContext(services.WithVideoID(ctx, key), s.logger)
	if t.VideoID != key {
		return Result{}, services.Wrap(services.ErrPersistence, "verdict", "analyze",
			"transcript "+t.VideoID+" does not belong to "+key, nil)
	}
	persisted, err := s.db.GetTranscript(ctx, key)
	if err != nil {
		return Result{}, err
	}
	if persisted == nil {
		return Result{}, services.Wrap(services.ErrPersistence, "verdict", "analyze",
			"no persisted transcript for "+key, nil)
	}
	if persisted.ContentHash != t.ContentHash {
		return Result{}, services.Wrap(services.ErrPersistence, "verdict", "analyze",
			"transcript for "+key+" differs from the persisted row", nil)
	}

	if !force {
		cached, err := s.db.GetVerdict(ctx, key)
		if err != nil {
			return Result{}, err
		}
		if cached != nil {
			res := Result{Verdict: *cached, Source: transcript.ProvenanceCache}
			res.Warnings = s.repairMirror(ctx, logger, cached)
			logger.Debug("verdict cache hit",
				logging.String("answer", string(cached.Answer)),
			)
			return res, nil
		}
	}

	resp, err := s.classifier.Classify(ctx, prompt.Build(t, s.promptOpts...))
	if err != nil {
		return Result{}, err
	}

	runID, _ := services.RequestIDFromContext(ctx)
	v := &store.Verdict{
		VideoID:        key,
		Answer:         resp.Answer,
		Reasoning:      resp.Reasoning,
		Evidence:       resp.Evidence,
		Model:          resp.Model,
		TokensUsed:     resp.TokensUsed,
		TranscriptHash: t.ContentHash,
		RunID:          runID,
		AnalyzedAt:     s.now(),
	}
	if err := s.db.SaveVerdict(ctx, v); err != nil {
		return Result{}, err
	}

	var warnings []string
	if missing := classifier.UntraceableEvidence(v.Evidence, t.Text); len(missing) > 0 {
		msg := "some evidence quotes do not appear verbatim in the transcript"
		warnings = append(warnings, msg)
		logging.WarnWithContext(logger, msg, "evidence_untraceable",
			logging.Int("untraceable_quotes", len(missing)),
			logging.String(logging.FieldErrorHint, "review the evidence against the transcript mirror"),
			logging.String(logging.FieldImpact, "verdict stored as returned by the model"),
		)
	}

	logger.Info("verdict stored",
		logging.String(logging.FieldEventType, "verdict_stored"),
		logging.String("answer", string(v.Answer)),
		logging.Int("evidence_count", len(v.Evidence)),
		logging.String("model", v.Model),
		logging.Int("tokens_used", v.TokensUsed),
		logging.String("transcript_hash", v.TranscriptHash),
	)
	return Result{Verdict: *v, Source: transcript.ProvenanceFresh, Warnings: warnings}, nil
}

func (s *Store) repairMirror(ctx context.Context, logger *slog.Logger, v *store.Verdict) []string {
	repaired, err := s.db.RepairVerdictMirror(ctx, v)
	switch {
	case err != nil:
		msg := "verdict mirror could not be regenerated"
		logging.WarnWithContext(logger, msg, "mirror_repair_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the results directory"),
			logging.String(logging.FieldImpact, "database row is intact; mirror file is stale"),
		)
		return []string{msg}
	case repaired:
		msg := "verdict mirror was missing or stale and has been regenerated"
		logging.WarnWithContext(logger, msg, "mirror_repaired",
			logging.String(logging.FieldImpact, "none; mirror rewritten from database row"),
		)
		return []string{msg}
	}
	return nil
}
