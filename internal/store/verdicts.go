package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"rhetoric/internal/fileutil"
	"rhetoric/internal/services"
)

// GetVerdict returns the verdict row for videoID, or nil when absent.
func (s *Store) GetVerdict(ctx context.Context, videoID string) (*Verdict, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+verdictColumns+" FROM verdicts WHERE video_id = ?", videoID)
	v, err := scanVerdict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "get verdict", videoID, err)
	}
	return v, nil
}

// SaveVerdict replaces the verdict row and rewrites the .json mirror as one
// unit. A transcript row for the same video must already exist.
func (s *Store) SaveVerdict(ctx context.Context, v *Verdict) error {
	if v == nil || strings.TrimSpace(v.VideoID) == "" {
		return services.Wrap(services.ErrPersistence, "store", "save verdict", "missing video id", nil)
	}
	if !v.Answer.Valid() {
		return services.Wrap(services.ErrPersistence, "store", "save verdict", fmt.Sprintf("invalid answer %q", v.Answer), nil)
	}
	if v.Evidence == nil {
		v.Evidence = []string{}
	}
	v.AnalyzedAt = normalizeTime(v.AnalyzedAt)

	evidence, err := json.Marshal(v.Evidence)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save verdict", "encode evidence", err)
	}
	mirrorData, err := encodeVerdictMirror(v)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save verdict", "encode mirror", err)
	}

	exec := func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO verdicts (`+verdictColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(video_id) DO UPDATE SET
				answer = excluded.answer,
				reasoning = excluded.reasoning,
				evidence_json = excluded.evidence_json,
				model = excluded.model,
				tokens_used = excluded.tokens_used,
				transcript_hash = excluded.transcript_hash,
				run_id = excluded.run_id,
				analysis_date = excluded.analysis_date`,
			v.VideoID, string(v.Answer), v.Reasoning, string(evidence), v.Model, v.TokensUsed, v.TranscriptHash, v.RunID, formatTime(v.AnalyzedAt),
		)
		return err
	}
	mirror := func() error {
		return fileutil.WriteFileAtomic(s.VerdictPath(v.VideoID), mirrorData, 0o644)
	}
	if err := s.commit(ctx, exec, mirror); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save verdict", v.VideoID, err)
	}
	return nil
}

// RepairVerdictMirror regenerates the .json mirror from the row when the file
// is missing or differs. It reports whether a rewrite happened.
func (s *Store) RepairVerdictMirror(ctx context.Context, v *Verdict) (bool, error) {
	path := s.VerdictPath(v.VideoID)
	data, err := encodeVerdictMirror(v)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "store", "encode verdict mirror", path, err)
	}
	ok, err := fileutil.MatchesBytes(path, data)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "store", "check verdict mirror", path, err)
	}
	if ok {
		return false, nil
	}
	err = s.withCommitLock(ensureContext(ctx), func() error {
		return fileutil.WriteFileAtomic(path, data, 0o644)
	})
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "store", "repair verdict mirror", path, err)
	}
	return true, nil
}

// ReadVerdictMirror decodes the .json mirror for videoID. The mirror is never
// consulted for cache decisions; this exists for inspection and tests.
func (s *Store) ReadVerdictMirror(videoID string) (*Verdict, error) {
	data, err := os.ReadFile(s.VerdictPath(videoID))
	if err != nil {
		return nil, err
	}
	var v Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode verdict mirror: %w", err)
	}
	if v.Evidence == nil {
		v.Evidence = []string{}
	}
	return &v, nil
}

func encodeVerdictMirror(v *Verdict) ([]byte, error) {
	clone := *v
	if clone.Evidence == nil {
		clone.Evidence = []string{}
	}
	data, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
