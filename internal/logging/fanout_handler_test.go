package logging

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoHandler := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(newFanoutHandler(infoHandler, debugHandler))
	logger.Debug("debug only message")

	if infoBuf.Len() != 0 {
		t.Fatal("info handler should not receive debug messages")
	}
	if debugBuf.Len() == 0 {
		t.Fatal("debug handler should receive debug messages")
	}
}

func TestTeeLoggerCarriesAttrs(t *testing.T) {
	var baseBuf, teeBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))
	logger := TeeLogger(base, slog.NewJSONHandler(&teeBuf, nil)).With(slog.String("video_id", "abc"))

	logger.Info("teed message")

	for name, buf := range map[string]*bytes.Buffer{"base": &baseBuf, "tee": &teeBuf} {
		if !bytes.Contains(buf.Bytes(), []byte(`"video_id":"abc"`)) {
			t.Fatalf("expected video_id attribute in %s output, got %s", name, buf.String())
		}
	}
}
