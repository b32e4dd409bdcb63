package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"rhetoric/internal/config"
)

func testYouTubeConfig() config.YouTube {
	return config.YouTube{
		Languages:             []string{"en", "en-GB"},
		RequestsPerSecond:     1000,
		RequestTimeoutSeconds: 5,
	}
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(testYouTubeConfig(),
		WithBaseURL(srv.URL),
		WithRetryConfig(RetryConfig{MaxRetries: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func watchPage(player string) string {
	return `<html><head><meta name="title" content="Page Title"></head><body>` +
		`<span itemprop="author"><link itemprop="name" content="Page Channel"></span>` +
		`<script>var ytInitialPlayerResponse = ` + player + `;var meta = {};</script></body></html>`
}

func TestWatchPageFetcherPicksManualEnglishTrack(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			player := fmt.Sprintf(`{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
				`{"baseUrl":"%[1]s/api/timedtext?lang=en&kind=asr","languageCode":"en","kind":"asr"},`+
				`{"baseUrl":"%[1]s/api/timedtext?lang=en&exp=xpe","languageCode":"en"},`+
				`{"baseUrl":"%[1]s/api/timedtext?lang=en-GB","languageCode":"en-GB"}]}},`+
				`"videoDetails":{"title":"Player \"Title\"","author":"Player Channel"}}`, srv.URL)
			_, _ = w.Write([]byte(watchPage(player)))
		case "/api/timedtext":
			if r.URL.Query().Get("lang") != "en-GB" {
				t.Errorf("unexpected track requested: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>` +
				`<text start="2" dur="1">welcome back</text>` +
				`<text start="0" dur="2">Hello &amp;#39;everyone&amp;#39;</text>` +
				`<text start="3" dur="1">  </text></transcript>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewWatchPageFetcher(newTestClient(t, srv), []string{"en-GB", "en"})
	got, err := f.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Language != "en-GB" || got.Source != SourceWatchPage {
		t.Fatalf("unexpected transcript header %+v", got)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("expected 2 non-empty segments, got %+v", got.Segments)
	}
	if got.Segments[1].Text != "Hello 'everyone'" || got.Segments[1].Start != 0 || got.Segments[1].Duration != 2 {
		t.Fatalf("unexpected segment %+v", got.Segments[1])
	}
}

func TestWatchPageFetcherErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no captions", 200, watchPage(`{"playabilityStatus":{"status":"OK"}}`), ErrCaptionsDisabled},
		{"private", 200, watchPage(`{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"This video is private"}}`), ErrNotFound},
		{"bot check", 200, watchPage(`{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm you're not a bot"}}`), ErrRateLimited},
		{"removed", 200, watchPage(`{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`), ErrNotFound},
		{"throttled", 429, "", ErrRateLimited},
		{"missing page", 404, "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewWatchPageFetcher(newTestClient(t, srv), nil).Fetch(context.Background(), "dQw4w9WgXcQ")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestClient(t, srv).get(context.Background(), srv.URL+"/x", 100)
	if err != nil || string(body) != "ok" {
		t.Fatalf("expected retry to succeed, got %q %v", body, err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClientRejectsOversizedBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(strings.Repeat("x", 101)))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.get(context.Background(), srv.URL+"/x?sig=secret", 100)
	if !errors.Is(err, ErrResponseTooLarge) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("error leaks query string: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("oversized body should not be retried, got %d calls", calls.Load())
	}

	body, err := client.get(context.Background(), srv.URL+"/x", 101)
	if err != nil || len(body) != 101 {
		t.Fatalf("body at the limit should pass, got %d bytes %v", len(body), err)
	}
}

func TestWatchPageMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(watchPage(`{"videoDetails":{"title":"T","author":"A"}}`)))
	}))
	defer srv.Close()

	m, err := NewWatchPageFetcher(newTestClient(t, srv), nil).Metadata(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if m.Title != "Page Title" || m.Channel != "Page Channel" {
		t.Fatalf("unexpected metadata %+v", m)
	}
}

func TestParsePageMeta(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		title   string
		channel string
	}{
		{"meta title", watchPage("{}"), "Page Title", "Page Channel"},
		{"og fallback",
			`<html><head><meta name="title" content=" "><meta property="og:title" content="OG Title"></head>` +
				`<body><link itemprop="name" content="Loose Channel"></body></html>`,
			"OG Title", "Loose Channel"},
		{"author block wins",
			`<html><body><link itemprop="name" content="Other"><span itemprop="author">` +
				`<link itemprop="name" content="Author"></span></body></html>`,
			"", "Author"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := parsePageMeta([]byte(tt.page))
			if meta.Title != tt.title || meta.Channel != tt.channel {
				t.Fatalf("parsePageMeta = %+v, want title %q channel %q", meta, tt.title, tt.channel)
			}
		})
	}
}

func TestOEmbedMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oembed" {
			http.NotFound(w, r)
			return
		}
		if !strings.Contains(r.URL.Query().Get("url"), "v=abc") {
			t.Errorf("unexpected oembed url %q", r.URL.Query().Get("url"))
		}
		if strings.Contains(r.URL.Query().Get("url"), "forbidden") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"title":" Speech ","author_name":"Channel X"}`))
	}))
	defer srv.Close()

	f := NewOEmbedFetcher(newTestClient(t, srv))
	m, err := f.Metadata(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if m.Title != "Speech" || m.Channel != "Channel X" {
		t.Fatalf("unexpected metadata %+v", m)
	}
	if _, err := f.Metadata(context.Background(), "abcforbidden"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for 403, got %v", err)
	}
}

func TestExtractJSONHandlesEscapes(t *testing.T) {
	page := []byte(`x = {"a":"brace } in \"string\" \\","b":{"c":1}}; trailing }`)
	got := extractJSON(page, "x = ")
	want := `{"a":"brace } in \"string\" \\","b":{"c":1}}`
	if string(got) != want {
		t.Fatalf("extractJSON = %s, want %s", got, want)
	}
	if extractJSON([]byte("nothing here"), "x = ") != nil {
		t.Fatal("expected nil without marker")
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "u1", LanguageCode: "de"},
		{BaseURL: "u2", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "u3&exp=xpe", LanguageCode: "en"},
	}
	got, ok := pickTrack(tracks, []string{"en-US"})
	if !ok || got.BaseURL != "u2" {
		t.Fatalf("expected generated English track, got %+v", got)
	}
	got, ok = pickTrack(tracks, []string{"fr"})
	if !ok || got.BaseURL != "u2" {
		t.Fatalf("expected English fallback, got %+v", got)
	}
	if _, ok := pickTrack([]captionTrack{{BaseURL: "x&exp=xpe"}}, nil); ok {
		t.Fatal("token-protected tracks must not be picked")
	}
}

func TestParseTimedTextFormat3(t *testing.T) {
	body := `<timedtext format="3"><body><p t="1500" d="2000"><s>it&amp;#39;s</s><s> fine</s></p><p t="4000" d="10">plain</p></body></timedtext>`
	segs, err := parseTimedText([]byte(body))
	if err != nil {
		t.Fatalf("parseTimedText: %v", err)
	}
	if len(segs) != 2 || segs[0].Text != "it's fine" || segs[0].Start != 1.5 || segs[0].Duration != 2 || segs[1].Text != "plain" {
		t.Fatalf("unexpected segments %+v", segs)
	}
}

func TestParseTimedTextSkipsUntimedSegments(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"srv1", `<transcript><text start="1.0" dur="1">first</text><text dur="1">no start</text>` +
			`<text start="abc" dur="1">bad start</text><text start="2.5">second</text></transcript>`},
		{"srv3", `<timedtext format="3"><body><p t="1000" d="1000">first</p><p d="500">no start</p>` +
			`<p t="-5" d="500">negative</p><p t="2500">second</p></body></timedtext>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := parseTimedText([]byte(tt.body))
			if err != nil {
				t.Fatalf("parseTimedText: %v", err)
			}
			if len(segs) != 2 || segs[0].Text != "first" || segs[1].Text != "second" {
				t.Fatalf("expected only timed segments in source order, got %+v", segs)
			}
			if segs[1].Start != 2.5 || segs[1].Duration != 0 {
				t.Fatalf("missing duration should read as zero, got %+v", segs[1])
			}
		})
	}
}

const sampleVTT = "WEBVTT\nKind: captions\nLanguage: en\n\n" +
	"00:00:00.000 --> 00:00:02.000 align:start position:0%\nHello everyone\n\n" +
	"stray text without timing\n\n" +
	"2\n00:00:02.000 --> 00:00:03.000\nHello everyone\nwelcome <c>back</c>\n\n" +
	"NOTE a comment\n\n" +
	"01:00.000 --> 01:01.500\nlast line\n"

func TestParseVTT(t *testing.T) {
	segs := parseVTT([]byte(sampleVTT), nil)
	want := []Segment{
		{Text: "Hello everyone", Start: 0, Duration: 2},
		{Text: "welcome back", Start: 2, Duration: 1},
		{Text: "last line", Start: 60, Duration: 1.5},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments %+v", len(segs), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func fakeYTDLP(files map[string]string, stdout string, runErr error) CommandRunner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if runErr != nil {
			return nil, runErr
		}
		for i, arg := range args {
			if arg == "-o" && i+1 < len(args) {
				dir := filepath.Dir(args[i+1])
				for fname, content := range files {
					if err := os.WriteFile(filepath.Join(dir, fname), []byte(content), 0o644); err != nil {
						return nil, err
					}
				}
			}
		}
		return []byte(stdout), nil
	}
}

func TestYTDLPFetcherPrefersConfiguredLanguage(t *testing.T) {
	files := map[string]string{
		"abc.de.vtt":    "WEBVTT\n\n00:00.000 --> 00:01.000\nHallo\n",
		"abc.en-GB.vtt": sampleVTT,
	}
	f := NewYTDLPFetcher("yt-dlp", testYouTubeConfig(), WithCommandRunner(fakeYTDLP(files, "", nil)))
	got, err := f.Fetch(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Language != "en-GB" || got.Source != SourceYTDLP || len(got.Segments) != 3 {
		t.Fatalf("unexpected transcript %+v", got)
	}
}

func TestYTDLPFetcherErrors(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		runErr error
		want   error
	}{
		{"no files", nil, nil, ErrCaptionsDisabled},
		{"private", nil, errors.New("yt-dlp: exit status 1: ERROR: [youtube] abc: Private video"), ErrNotFound},
		{"throttled", nil, errors.New("yt-dlp: exit status 1: ERROR: HTTP Error 429: Too Many Requests"), ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewYTDLPFetcher("yt-dlp", testYouTubeConfig(), WithCommandRunner(fakeYTDLP(tt.files, "", tt.runErr)))
			if _, err := f.Fetch(context.Background(), "abc"); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestYTDLPMetadata(t *testing.T) {
	var gotArgs []string
	run := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte(`{"title":"Rally","uploader":"Uploader Name","channel":""}`), nil
	}
	cfg := testYouTubeConfig()
	cfg.CookiesPath = "/tmp/cookies.txt"
	m, err := NewYTDLPMetadataFetcher("yt-dlp", cfg, WithCommandRunner(run)).Metadata(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if m.Title != "Rally" || m.Channel != "Uploader Name" {
		t.Fatalf("unexpected metadata %+v", m)
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "--cookies /tmp/cookies.txt") {
		t.Fatalf("cookies not forwarded: %v", gotArgs)
	}
}

type stubFetcher struct {
	t   Transcript
	err error
	n   int
}

func (s *stubFetcher) Fetch(context.Context, string) (Transcript, error) {
	s.n++
	return s.t, s.err
}

type stubMeta struct {
	m   Metadata
	err error
}

func (s stubMeta) Metadata(context.Context, string) (Metadata, error) { return s.m, s.err }

func TestChainFetcher(t *testing.T) {
	first := &stubFetcher{err: fmt.Errorf("wrapped: %w", ErrRateLimited)}
	second := &stubFetcher{t: Transcript{Source: "second"}}
	got, err := NewChainFetcher(nil, first, nil, second).Fetch(context.Background(), "abc")
	if err != nil || got.Source != "second" {
		t.Fatalf("expected fallback success, got %+v %v", got, err)
	}

	failing := NewChainFetcher(nil,
		&stubFetcher{err: ErrRateLimited},
		&stubFetcher{err: ErrCaptionsDisabled},
		&stubFetcher{err: errors.New("boom")},
	)
	if _, err := failing.Fetch(context.Background(), "abc"); !errors.Is(err, ErrCaptionsDisabled) {
		t.Fatalf("expected most specific error, got %v", err)
	}
}

func TestChainMetadataMerges(t *testing.T) {
	chain := NewChainMetadata(nil,
		stubMeta{err: errors.New("offline")},
		stubMeta{m: Metadata{Title: "Only Title"}},
		stubMeta{m: Metadata{Title: "Other", Channel: "Chan"}},
	)
	m, err := chain.Metadata(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if m.Title != "Only Title" || m.Channel != "Chan" {
		t.Fatalf("unexpected merge %+v", m)
	}

	if _, err := NewChainMetadata(nil, stubMeta{err: errors.New("offline")}).Metadata(context.Background(), "abc"); err == nil {
		t.Fatal("expected error when no source produced metadata")
	}
}
