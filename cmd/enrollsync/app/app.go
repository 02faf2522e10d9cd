// Package app provides the application context and dependency management
// for the enrollsync CLI. It centralizes configuration, logging and the
// construction of enrollsync clients for the commands.
package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync"
	"github.com/agentstation/enrollsync/internal/appcontext"
	"github.com/agentstation/enrollsync/internal/config"
	"github.com/agentstation/enrollsync/internal/crm"
	"github.com/agentstation/enrollsync/internal/metrics"
	"github.com/agentstation/enrollsync/pkg/errors"
)

// App represents the enrollsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	flags  globalFlags
	logger *zerolog.Logger
	runID  string

	// open CRM connections, closed on Shutdown
	mu      sync.Mutex
	closers []func() error
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		runID:   uuid.NewString(),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Run returns the run settings.
func (a *App) Run() *config.Run {
	return &a.config.Run
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --output format.
func (a *App) OutputFormat() string {
	return a.config.Output
}

// RunID returns the id of this invocation.
func (a *App) RunID() string {
	return a.runID
}

// Client builds an enrollsync client from the run settings followed by
// opts. The CRM source is a directory of extracts or a PostgreSQL
// database; the returned function closes the database connection.
func (a *App) Client(ctx context.Context, opts ...enrollsync.Option) (enrollsync.Client, func() error, error) {
	run := a.config.Run
	if err := run.Validate(); err != nil {
		return nil, nil, err
	}

	logger := a.logger
	base := []enrollsync.Option{
		enrollsync.WithFields(run.Fields),
		enrollsync.WithDaysGap(run.DaysGap),
		enrollsync.WithOutputDir(run.OutputDir),
		enrollsync.WithReport(run.Report),
		enrollsync.WithDebug(run.Debug),
		enrollsync.WithLogger(logger),
	}
	if run.Metrics {
		base = append(base, enrollsync.WithMetrics(metrics.New()))
	}

	closer := func() error { return nil }
	switch run.Source {
	case config.SourcePostgres:
		db, err := crm.Open(ctx, run.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlOpts := []crm.SQLOption{crm.WithFields(run.Fields), crm.WithLogger(logger)}
		base = append(base,
			enrollsync.WithSource(crm.NewSQLSource(db, sqlOpts...)),
			enrollsync.WithUpdater(crm.NewSQLUpdater(db, sqlOpts...)))
		closer = db.Close
	default:
		base = append(base, enrollsync.WithSource(crm.NewFileSource(run.ExtractDir)))
	}

	client, err := enrollsync.New(append(base, opts...)...)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}

	var once sync.Once
	var closeErr error
	closeOnce := func() error {
		once.Do(func() { closeErr = closer() })
		return closeErr
	}

	a.mu.Lock()
	a.closers = append(a.closers, closeOnce)
	a.mu.Unlock()
	return client, closeOnce, nil
}

// Shutdown closes any CRM connection a command left open.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var first error
	for _, c := range closers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c(); err != nil && first == nil {
			first = err
			a.logger.Error().Err(err).Msg("Failed to close CRM connection during shutdown")
		}
	}
	return first
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRunID sets a fixed run id (useful for testing).
func WithRunID(id string) Option {
	return func(a *App) error {
		a.runID = id
		return nil
	}
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)
