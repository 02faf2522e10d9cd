package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger records every event of a test run in memory. Tests hand
// TestLogger.Logger to the component under test and inspect the JSON lines
// afterwards.
type TestLogger struct {
	*zerolog.Logger
	buf *bytes.Buffer
}

// NewTestLogger returns a trace level TestLogger. The global level is
// lowered for the duration of t and restored on cleanup.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	buf := new(bytes.Buffer)
	logger := zerolog.New(buf).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &TestLogger{Logger: &logger, buf: buf}
}

// Output is everything logged so far.
func (tl *TestLogger) Output() string {
	return tl.buf.String()
}

// Lines splits Output into events.
func (tl *TestLogger) Lines() []string {
	if out := strings.TrimSpace(tl.Output()); out != "" {
		return strings.Split(out, "\n")
	}
	return nil
}

func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// AssertContains fails t unless some event contains substr.
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("no log event contains %q; got:\n%s", substr, tl.Output())
	}
}

// NewNopLogger returns a logger that drops everything.
func NewNopLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
