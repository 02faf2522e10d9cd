// Package logging provides structured logging for enrollsync using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise, so the
// same binary works interactively and under a scheduler.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Int("students", n).Msg("Matching enrollments")
//
//	ctx := logging.WithRun(context.Background(), runID)
//	logging.FromContext(ctx).Debug().Str("case", name).Msg("Case matched")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger serves packages that were not handed a logger. It starts
// from LOG_LEVEL and LOG_FORMAT until the CLI installs its own.
var defaultLogger = NewLoggerFromConfig(&Config{
	Level:   os.Getenv("LOG_LEVEL"),
	Format:  os.Getenv("LOG_FORMAT"),
	NoColor: os.Getenv("NO_COLOR") != "",
})

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's own
// global log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
