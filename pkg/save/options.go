package save

import (
	"time"

	"github.com/agentstation/utc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync/pkg/logging"
)

// Options is the configuration for save.
type Options struct {
	dir     string
	date    time.Time
	report  bool
	metrics prometheus.Gatherer
	debug   bool
	logger  *zerolog.Logger
}

// Dir returns the output directory.
func (s *Options) Dir() string {
	return s.dir
}

// Date returns the date stamped on the output file names.
func (s *Options) Date() time.Time {
	return s.date
}

// Report reports whether report.md is written.
func (s *Options) Report() bool {
	return s.report
}

// Metrics returns the gatherer written to metrics.prom, if any.
func (s *Options) Metrics() prometheus.Gatherer {
	return s.metrics
}

// Debug reports whether the debugging tables are written.
func (s *Options) Debug() bool {
	return s.debug
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		dir:    ".",
		date:   utc.Now().Time,
		debug:  true,
		logger: logging.Default(),
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithDir sets the output directory.
func WithDir(dir string) Option {
	return func(s *Options) {
		s.dir = dir
	}
}

// WithDate sets the date stamped on the output file names.
func WithDate(t time.Time) Option {
	return func(s *Options) {
		s.date = t
	}
}

// WithReport toggles the markdown report.
func WithReport(enabled bool) Option {
	return func(s *Options) {
		s.report = enabled
	}
}

// WithMetrics writes the gatherer's metrics as a Prometheus textfile.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Options) {
		s.metrics = g
	}
}

// WithDebug toggles the debugging tables.
func WithDebug(enabled bool) Option {
	return func(s *Options) {
		s.debug = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Options) {
		s.logger = logger
	}
}
