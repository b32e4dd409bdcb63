package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rhetoric/internal/services"
)

// GetMetadata returns cached title/channel for videoID, or nil when absent.
func (s *Store) GetMetadata(ctx context.Context, videoID string) (*Metadata, error) {
	ctx = ensureContext(ctx)
	var (
		m       Metadata
		fetched string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT video_id, video_title, channel_name, fetch_date FROM video_metadata WHERE video_id = ?", videoID,
	).Scan(&m.VideoID, &m.Title, &m.Channel, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "get metadata", videoID, err)
	}
	if ts, err := parseTimeString(fetched); err == nil {
		m.FetchedAt = ts
	}
	return &m, nil
}

// SaveMetadata upserts cached title/channel. There is no mirror file.
func (s *Store) SaveMetadata(ctx context.Context, m *Metadata) error {
	if m == nil || strings.TrimSpace(m.VideoID) == "" {
		return services.Wrap(services.ErrPersistence, "store", "save metadata", "missing video id", nil)
	}
	ctx = ensureContext(ctx)
	m.FetchedAt = normalizeTime(m.FetchedAt)
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO video_metadata (video_id, video_title, channel_name, fetch_date)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(video_id) DO UPDATE SET
				video_title = excluded.video_title,
				channel_name = excluded.channel_name,
				fetch_date = excluded.fetch_date`,
			m.VideoID, m.Title, m.Channel, formatTime(m.FetchedAt),
		)
		return err
	})
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save metadata", m.VideoID, err)
	}
	return nil
}

// List returns the most recently extracted transcripts joined with their
// verdicts. limit <= 0 returns every row.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	ctx = ensureContext(ctx)
	query := `
		SELECT t.video_id, t.video_title, t.channel_name, t.extraction_date,
		       COALESCE(v.answer, ''), COALESCE(v.analysis_date, ''),
		       COALESCE(v.transcript_hash, '') <> '' AND v.transcript_hash <> t.content_hash
		FROM transcripts t
		LEFT JOIN verdicts v ON v.video_id = t.video_id
		ORDER BY t.extraction_date DESC, t.video_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "list", "", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum      Summary
			fetched  string
			answer   string
			analyzed string
			stale    bool
		)
		if err := rows.Scan(&sum.VideoID, &sum.Title, &sum.Channel, &fetched, &answer, &analyzed, &stale); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "list", "scan", err)
		}
		sum.Answer = Answer(answer)
		sum.Stale = stale
		if ts, err := parseTimeString(fetched); err == nil {
			sum.FetchedAt = ts
		}
		if ts, err := parseTimeString(analyzed); err == nil {
			sum.AnalyzedAt = ts
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "list", "", err)
	}
	return out, nil
}
