// Package pipeline runs resolve, extract, and analyze for one video and is the
// only layer that turns a failure into a logged outcome.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"rhetoric/internal/logging"
	"rhetoric/internal/services"
	"rhetoric/internal/store"
	"rhetoric/internal/transcript"
	"rhetoric/internal/verdict"
	"rhetoric/internal/videoid"
)

const (
	stageResolve = "resolve"
	stageExtract = "extract"
	stageAnalyze = "analyze"
)

// Options selects which cached records Run may reuse.
type Options struct {
	ForceExtract  bool
	ForceAnalysis bool
}

// Outcome is everything a caller needs to render a completed run.
type Outcome struct {
	RunID            string
	VideoID          videoid.ID
	Transcript       store.Transcript
	TranscriptSource transcript.Provenance
	Verdict          store.Verdict
	VerdictSource    transcript.Provenance
	// ReanalysisReason is set when the verdict was recomputed although one
	// was cached.
	ReanalysisReason string
	Warnings         []string
}

// ExtractOutcome is the result of Extract.
type ExtractOutcome struct {
	RunID            string
	VideoID          videoid.ID
	Transcript       store.Transcript
	TranscriptSource transcript.Provenance
	Changed          bool
	Warnings         []string
}

// Pipeline sequences the transcript and verdict stores.
type Pipeline struct {
	transcripts *transcript.Store
	verdicts    *verdict.Store
	logger      *slog.Logger
	newRunID    func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.NewComponentLogger(logger, "pipeline")
	}
}

// WithRunIDs overrides run identifier generation.
func WithRunIDs(next func() string) Option {
	return func(p *Pipeline) {
		if next != nil {
			p.newRunID = next
		}
	}
}

// New returns a Pipeline over the given stores.
func New(transcripts *transcript.Store, verdicts *verdict.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		transcripts: transcripts,
		verdicts:    verdicts,
		logger:      logging.NewComponentLogger(nil, "pipeline"),
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run resolves raw, obtains its transcript, and obtains a verdict for that
// transcript. The first failure stops the run; nothing is committed for the
// failing step.
func (p *Pipeline) Run(ctx context.Context, raw string, opts Options) (Outcome, error) {
	runID := p.newRunID()
	ctx = services.WithRequestID(ctx, runID)
	out := Outcome{RunID: runID}

	id, err := videoid.Resolve(raw)
	if err != nil {
		return out, p.fail(services.WithStage(ctx, stageResolve), err)
	}
	ctx = services.WithVideoID(ctx, string(id))
	out.VideoID = id

	extractCtx := services.WithStage(ctx, stageExtract)
	tr, err := p.transcripts.GetOrFetch(extractCtx, id, opts.ForceExtract)
	if err != nil {
		return out, p.fail(extractCtx, err)
	}
	out.Transcript = tr.Transcript
	out.TranscriptSource = tr.Source
	out.Warnings = append(out.Warnings, tr.Warnings...)

	analyzeCtx := services.WithStage(ctx, stageAnalyze)
	force, reason, err := p.analysisForced(analyzeCtx, id, tr, opts)
	if err != nil {
		return out, p.fail(analyzeCtx, err)
	}
	vr, err := p.verdicts.GetOrAnalyze(analyzeCtx, id, tr.Transcript, force)
	if err != nil {
		return out, p.fail(analyzeCtx, err)
	}
	out.Verdict = vr.Verdict
	out.VerdictSource = vr.Source
	out.Warnings = append(out.Warnings, vr.Warnings...)
	if force {
		out.ReanalysisReason = reason
	}

	logging.WithContext(ctx, p.logger).Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("answer", string(out.Verdict.Answer)),
		logging.String("transcript_source", string(out.TranscriptSource)),
		logging.String("verdict_source", string(out.VerdictSource)),
		logging.Int("warnings", len(out.Warnings)),
	)
	return out, nil
}

// Extract resolves raw and obtains its transcript without analysis.
func (p *Pipeline) Extract(ctx context.Context, raw string, overwrite bool) (ExtractOutcome, error) {
	runID := p.newRunID()
	ctx = services.WithRequestID(ctx, runID)
	out := ExtractOutcome{RunID: runID}

	id, err := videoid.Resolve(raw)
	if err != nil {
		return out, p.fail(services.WithStage(ctx, stageResolve), err)
	}
	ctx = services.WithStage(services.WithVideoID(ctx, string(id)), stageExtract)
	out.VideoID = id

	tr, err := p.transcripts.GetOrFetch(ctx, id, overwrite)
	if err != nil {
		return out, p.fail(ctx, err)
	}
	out.Transcript = tr.Transcript
	out.TranscriptSource = tr.Source
	out.Changed = tr.Changed
	out.Warnings = tr.Warnings
	return out, nil
}

// analysisForced decides whether a cached verdict may be reused. A transcript
// fetched in this run, or one whose hash no longer matches the verdict,
// always gets a fresh classification.
func (p *Pipeline) analysisForced(ctx context.Context, id videoid.ID, tr transcript.Result, opts Options) (bool, string, error) {
	logger := logging.WithContext(ctx, p.logger)
	decide := func(force bool, result, reason string) (bool, string, error) {
		logger.Debug("analysis cache decision", logging.Args(logging.DecisionAttrs("verdict_cache", result, reason)...)...)
		return force, reason, nil
	}
	if opts.ForceAnalysis {
		return decide(true, "reanalyze", "analysis forced")
	}
	if tr.Source == transcript.ProvenanceFresh {
		return decide(true, "reanalyze", "transcript fetched in this run")
	}
	cached, err := p.verdicts.Cached(ctx, id)
	if err != nil {
		return false, "", err
	}
	if cached == nil {
		return decide(false, "analyze", "no cached verdict")
	}
	if cached.TranscriptHash != tr.Transcript.ContentHash {
		return decide(true, "reanalyze", "cached verdict was computed from a different transcript")
	}
	return decide(false, "reuse", "cached verdict matches transcript")
}

func (p *Pipeline) fail(ctx context.Context, err error) error {
	logger := logging.WithContext(ctx, p.logger)
	if errors.Is(err, context.Canceled) {
		logger.Debug("run canceled")
		return err
	}
	kind := services.Kind(err)
	attrs := []logging.Attr{
		logging.Error(err),
		logging.String(logging.FieldErrorKind, kind),
		logging.String(logging.FieldErrorHint, hintFor(kind)),
		logging.Bool("retryable", services.Retryable(err)),
	}
	logging.ErrorWithContext(logger, "run failed", "run_failure", attrs...)
	return err
}

func hintFor(kind string) string {
	switch kind {
	case services.KindInvalidIdentifier:
		return "pass a YouTube watch URL, short URL, or 11-character video id"
	case services.KindTranscriptUnavailable:
		return "the video may be private, removed, or without captions; set youtube.cookies_path to try yt-dlp with a session"
	case services.KindRateLimited:
		return "wait before retrying, or configure youtube.cookies_path or youtube.https_proxy"
	case services.KindTimeout:
		return "retry later or raise llm.timeout_seconds and analysis.timeout_seconds"
	case services.KindSchemaViolation:
		return "inspect the raw model response; nothing was stored"
	case services.KindPersistence:
		return "check permissions and free space under paths.data_dir"
	case services.KindConfiguration:
		return "run rhetoric config validate and rhetoric check"
	}
	return "check logs for details"
}
