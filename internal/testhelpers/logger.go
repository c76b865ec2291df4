package testhelpers

import (
	"github.com/myrjola/interviewprep/internal/logging"
	"io"
	"log/slog"
	"testing"
)

// NewLogger creates a new logger with the given log sink such as io.Discard.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// NewTestLogger routes log output to t.Log so that it only shows up for failing or verbose tests.
func NewTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return NewLogger(testWriter{t: t})
}
