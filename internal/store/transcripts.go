package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rhetoric/internal/fileutil"
	"rhetoric/internal/services"
)

// GetTranscript returns the transcript row for videoID, or nil when absent.
func (s *Store) GetTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+transcriptColumns+" FROM transcripts WHERE video_id = ?", videoID)
	t, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "get transcript", videoID, err)
	}
	return t, nil
}

// SaveTranscript upserts the row and rewrites the .txt mirror as one unit. The
// content hash and timestamp are normalized on t before writing.
func (s *Store) SaveTranscript(ctx context.Context, t *Transcript) error {
	if t == nil || strings.TrimSpace(t.VideoID) == "" {
		return services.Wrap(services.ErrPersistence, "store", "save transcript", "missing video id", nil)
	}
	t.ContentHash = fileutil.SHA256Hex([]byte(t.Text))
	t.FetchedAt = normalizeTime(t.FetchedAt)

	exec := func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transcripts (`+transcriptColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(video_id) DO UPDATE SET
				video_title = excluded.video_title,
				channel_name = excluded.channel_name,
				transcript_text = excluded.transcript_text,
				segment_count = excluded.segment_count,
				transcript_language = excluded.transcript_language,
				content_hash = excluded.content_hash,
				source = excluded.source,
				extraction_date = excluded.extraction_date`,
			t.VideoID, t.Title, t.Channel, t.Text, t.SegmentCount, t.Language, t.ContentHash, t.Source, formatTime(t.FetchedAt),
		)
		return err
	}
	mirror := func() error {
		return fileutil.WriteFileAtomic(s.TranscriptPath(t.VideoID), []byte(t.Text), 0o644)
	}
	if err := s.commit(ctx, exec, mirror); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save transcript", t.VideoID, err)
	}
	return nil
}

// RepairTranscriptMirror regenerates the .txt mirror from the row when the file
// is missing or its hash differs. It reports whether a rewrite happened.
func (s *Store) RepairTranscriptMirror(ctx context.Context, t *Transcript) (bool, error) {
	path := s.TranscriptPath(t.VideoID)
	ok, err := fileutil.MatchesHash(path, t.ContentHash)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "store", "check transcript mirror", path, err)
	}
	if ok {
		return false, nil
	}
	err = s.withCommitLock(ensureContext(ctx), func() error {
		return fileutil.WriteFileAtomic(path, []byte(t.Text), 0o644)
	})
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "store", "repair transcript mirror", path, err)
	}
	return true, nil
}
