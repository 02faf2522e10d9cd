package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. ENROLLSYNC_LOG_LEVEL or log_level in the config file
//  5. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	logConfig := logging.DefaultConfig()
	logConfig.Level = level
	logConfig.Format = config.LogFormat
	logConfig.Output = config.LogOutput
	logConfig.NoColor = logConfig.NoColor || config.NoColor
	logConfig.AddCaller = level == "debug" || level == "trace"

	return logging.NewLoggerFromConfig(logConfig)
}

// determineLogLevel applies the precedence rules of NewLogger.
func determineLogLevel(config *Config) string {
	if config.LogLevel != "" {
		validated := validateLogLevel(config.LogLevel)
		if validated != config.LogLevel {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", config.LogLevel, validated)
		}
		return validated
	}

	if config.Verbose && config.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}

	if config.EnvLogLevel != "" {
		return validateLogLevel(config.EnvLogLevel)
	}
	return "info"
}

// validateLogLevel returns level if it is known, else "info".
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
