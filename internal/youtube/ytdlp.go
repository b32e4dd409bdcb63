package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"rhetoric/internal/config"
	"rhetoric/internal/logging"
)

// SourceYTDLP identifies transcripts produced by yt-dlp.
const SourceYTDLP = "yt_dlp"

// CommandRunner executes name with args and returns stdout. Errors carry
// stderr text.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// YTDLPOption customizes the yt-dlp fetchers.
type YTDLPOption func(*ytdlp)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(run CommandRunner) YTDLPOption {
	return func(y *ytdlp) {
		if run != nil {
			y.run = run
		}
	}
}

// WithYTDLPLogger sets the logger for caption parsing diagnostics.
func WithYTDLPLogger(logger *slog.Logger) YTDLPOption {
	return func(y *ytdlp) {
		y.logger = logging.NewComponentLogger(logger, "yt-dlp")
	}
}

type ytdlp struct {
	binary    string
	cookies   string
	proxy     string
	languages []string
	run       CommandRunner
	logger    *slog.Logger
}

func newYTDLP(binary string, cfg config.YouTube, opts []YTDLPOption) ytdlp {
	y := ytdlp{
		binary:    binary,
		cookies:   strings.TrimSpace(cfg.CookiesPath),
		proxy:     strings.TrimSpace(cfg.HTTPSProxy),
		languages: cfg.Languages,
		run:       defaultCommandRunner,
		logger:    logging.NewComponentLogger(nil, "yt-dlp"),
	}
	for _, opt := range opts {
		opt(&y)
	}
	return y
}

func (y ytdlp) commonArgs() []string {
	args := []string{"--skip-download", "--no-warnings", "--no-playlist"}
	if y.cookies != "" {
		args = append(args, "--cookies", y.cookies)
	}
	if y.proxy != "" {
		args = append(args, "--proxy", y.proxy)
	}
	return args
}

// YTDLPFetcher downloads caption files with yt-dlp.
type YTDLPFetcher struct {
	ytdlp
}

// NewYTDLPFetcher returns a transcript source backed by the yt-dlp binary.
func NewYTDLPFetcher(binary string, cfg config.YouTube, opts ...YTDLPOption) *YTDLPFetcher {
	return &YTDLPFetcher{ytdlp: newYTDLP(binary, cfg, opts)}
}

// Fetch implements TranscriptFetcher.
func (f *YTDLPFetcher) Fetch(ctx context.Context, videoID string) (Transcript, error) {
	dir, err := os.MkdirTemp("", "rhetoric-ytdlp-*")
	if err != nil {
		return Transcript{}, fmt.Errorf("create yt-dlp work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	subLangs := strings.Join(f.languages, ",")
	if subLangs == "" {
		subLangs = "en.*"
	}
	args := append(f.commonArgs(),
		"--write-subs", "--write-auto-subs",
		"--sub-format", "vtt",
		"--sub-langs", subLangs,
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--", watchURL(videoID),
	)
	if _, err := f.run(ctx, f.binary, args...); err != nil {
		return Transcript{}, classifyYTDLPError(err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if err != nil {
		return Transcript{}, fmt.Errorf("list yt-dlp captions: %w", err)
	}
	if len(files) == 0 {
		return Transcript{}, fmt.Errorf("%w: yt-dlp found no captions for %s", ErrCaptionsDisabled, videoID)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return languageRank(vttLanguage(files[i], videoID), f.languages) <
			languageRank(vttLanguage(files[j], videoID), f.languages)
	})
	chosen := files[0]
	raw, err := os.ReadFile(chosen)
	if err != nil {
		return Transcript{}, fmt.Errorf("read yt-dlp captions: %w", err)
	}
	segments := parseVTT(raw, f.logger)
	if len(segments) == 0 {
		return Transcript{}, fmt.Errorf("%w: caption file for %s is empty", ErrCaptionsDisabled, videoID)
	}
	return Transcript{Segments: segments, Language: vttLanguage(chosen, videoID), Source: SourceYTDLP}, nil
}

// vttLanguage extracts "en-GB" from ".../<id>.en-GB.vtt".
func vttLanguage(path, videoID string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".vtt")
	return strings.TrimPrefix(base, videoID+".")
}

// YTDLPMetadataFetcher reads title and channel from yt-dlp's JSON dump.
type YTDLPMetadataFetcher struct {
	ytdlp
}

// NewYTDLPMetadataFetcher returns a metadata source backed by yt-dlp.
func NewYTDLPMetadataFetcher(binary string, cfg config.YouTube, opts ...YTDLPOption) *YTDLPMetadataFetcher {
	return &YTDLPMetadataFetcher{ytdlp: newYTDLP(binary, cfg, opts)}
}

// Metadata implements MetadataFetcher.
func (f *YTDLPMetadataFetcher) Metadata(ctx context.Context, videoID string) (Metadata, error) {
	args := append(f.commonArgs(), "--dump-json", "--", watchURL(videoID))
	out, err := f.run(ctx, f.binary, args...)
	if err != nil {
		return Metadata{}, classifyYTDLPError(err)
	}
	var payload struct {
		Title    string `json:"title"`
		Channel  string `json:"channel"`
		Uploader string `json:"uploader"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(out), &payload); err != nil {
		return Metadata{}, fmt.Errorf("decode yt-dlp metadata: %w", err)
	}
	channel := strings.TrimSpace(payload.Channel)
	if channel == "" {
		channel = strings.TrimSpace(payload.Uploader)
	}
	return Metadata{Title: strings.TrimSpace(payload.Title), Channel: channel}, nil
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func classifyYTDLPError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "http error 429"), strings.Contains(msg, "not a bot"):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case strings.Contains(msg, "private video"),
		strings.Contains(msg, "video unavailable"),
		strings.Contains(msg, "has been removed"),
		strings.Contains(msg, "incomplete youtube id"),
		strings.Contains(msg, "http error 404"):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("yt-dlp: %w", err)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout bytes.Buffer
	var stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
