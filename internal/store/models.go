package store

import "time"

// Answer is the three-way classification outcome.
type Answer string

const (
	AnswerYes             Answer = "Yes"
	AnswerNo              Answer = "No"
	AnswerCannotDetermine Answer = "Cannot determine"
)

// Answers lists every valid answer in schema order.
var Answers = []Answer{AnswerYes, AnswerNo, AnswerCannotDetermine}

// Valid reports whether a is one of the canonical literals.
func (a Answer) Valid() bool {
	switch a {
	case AnswerYes, AnswerNo, AnswerCannotDetermine:
		return true
	}
	return false
}

// Transcript sources.
const (
	SourceWatchPage = "watch_page"
	SourceYTDLP     = "yt_dlp"
)

// Transcript is the persisted transcript row. Text is byte-identical to the
// .txt mirror; ContentHash is the SHA-256 of Text.
type Transcript struct {
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	Channel      string    `json:"channel"`
	Text         string    `json:"text"`
	SegmentCount int       `json:"segment_count"`
	Language     string    `json:"language"`
	ContentHash  string    `json:"content_hash"`
	Source       string    `json:"source"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Verdict is the persisted classification row and the shape of the .json mirror.
type Verdict struct {
	VideoID        string    `json:"video_id"`
	Answer         Answer    `json:"answer"`
	Reasoning      string    `json:"reasoning"`
	Evidence       []string  `json:"evidence"`
	Model          string    `json:"model"`
	TokensUsed     int       `json:"tokens_used"`
	TranscriptHash string    `json:"transcript_hash"`
	RunID          string    `json:"run_id"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

// Metadata caches best-effort title/channel lookups.
type Metadata struct {
	VideoID   string
	Title     string
	Channel   string
	FetchedAt time.Time
}

// Summary is one row of the list view.
type Summary struct {
	VideoID    string
	Title      string
	Channel    string
	FetchedAt  time.Time
	Answer     Answer
	AnalyzedAt time.Time
	Stale      bool
}
