package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync"
	"github.com/agentstation/enrollsync/internal/config"
	"github.com/agentstation/enrollsync/internal/crm"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ClientFunc       func(context.Context, ...enrollsync.Option) (enrollsync.Client, func() error, error)
	RunSettings      *config.Run
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Client builds a client using the mock function, or a real client over
// the extract directory of the run settings followed by opts.
func (m *Mock) Client(ctx context.Context, opts ...enrollsync.Option) (enrollsync.Client, func() error, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(ctx, opts...)
	}
	run := m.Run()
	base := []enrollsync.Option{
		enrollsync.WithFields(run.Fields),
		enrollsync.WithDaysGap(run.DaysGap),
		enrollsync.WithOutputDir(run.OutputDir),
		enrollsync.WithReport(run.Report),
		enrollsync.WithDebug(run.Debug),
		enrollsync.WithLogger(m.Logger()),
	}
	if run.ExtractDir != "" {
		base = append(base, enrollsync.WithSource(crm.NewFileSource(run.ExtractDir)))
	}
	c, err := enrollsync.New(append(base, opts...)...)
	return c, func() error { return nil }, err
}

// Run returns the mock settings or the defaults.
func (m *Mock) Run() *config.Run {
	if m.RunSettings != nil {
		return m.RunSettings
	}
	run := config.DefaultRun()
	return &run
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// RunID returns a fixed run id.
func (m *Mock) RunID() string {
	return "test-run"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string {
	return "unknown"
}

// Date returns "unknown".
func (m *Mock) Date() string {
	return "unknown"
}

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string {
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
