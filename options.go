package enrollsync

import (
	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync/internal/crm"
	"github.com/agentstation/enrollsync/internal/metrics"
	"github.com/agentstation/enrollsync/pkg/clearinghouse"
	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
)

// options holds the client configuration.
type options struct {
	fields  enrollment.Fields
	columns clearinghouse.Columns
	source  crm.Source
	updater crm.Updater

	daysGap   int
	today     enrollment.Date
	outputDir string
	classes   bool

	report  bool
	debug   bool
	metrics *metrics.Recorder

	logger *zerolog.Logger
}

// defaults returns the default options.
func defaults() *options {
	return &options{
		fields:    enrollment.DefaultFields(),
		columns:   clearinghouse.DefaultColumns(),
		daysGap:   constants.DefaultDaysGap,
		today:     enrollment.DateOf(utc.Now().Time),
		outputDir: ".",
		classes:   true,
		debug:     true,
		logger:    logging.Default(),
	}
}

// apply applies the given options.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithFields sets the CRM column names.
func WithFields(f enrollment.Fields) Option {
	return func(o *options) error {
		o.fields = f
		return nil
	}
}

// WithColumns sets the clearinghouse detail report columns.
func WithColumns(cols clearinghouse.Columns) Option {
	return func(o *options) error {
		o.columns = cols
		return nil
	}
}

// WithSource sets where CRM tables are read from.
func WithSource(s crm.Source) Option {
	return func(o *options) error {
		o.source = s
		return nil
	}
}

// WithUpdater sets where enrollment updates are applied.
func WithUpdater(u crm.Updater) Option {
	return func(o *options) error {
		o.updater = u
		return nil
	}
}

// WithDaysGap sets how many days may separate two terms of one enrollment.
func WithDaysGap(days int) Option {
	return func(o *options) error {
		if days < 0 {
			return errors.NewValidationError("daysgap", days, "must not be negative")
		}
		o.daysGap = days
		return nil
	}
}

// WithToday overrides the current date, used for the clearinghouse report
// date and the database-only start checks.
func WithToday(d enrollment.Date) Option {
	return func(o *options) error {
		if !d.Valid() {
			return errors.NewValidationError("today", d, "date is required")
		}
		o.today = d
		return nil
	}
}

// WithOutputDir sets where merge output and pre-flight reports go.
func WithOutputDir(dir string) Option {
	return func(o *options) error {
		o.outputDir = dir
		return nil
	}
}

// WithClassScope restricts CRM enrollments to students in the high school
// classes of the imported report. It is on by default.
func WithClassScope(enabled bool) Option {
	return func(o *options) error {
		o.classes = enabled
		return nil
	}
}

// WithReport toggles the markdown run report.
func WithReport(enabled bool) Option {
	return func(o *options) error {
		o.report = enabled
		return nil
	}
}

// WithDebug toggles the debugging tables.
func WithDebug(enabled bool) Option {
	return func(o *options) error {
		o.debug = enabled
		return nil
	}
}

// WithMetrics records run metrics and writes them with the merge output.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) error {
		o.metrics = r
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
