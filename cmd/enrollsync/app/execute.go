package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
)

// Exit codes returned by the CLI.
const (
	ExitFailure          = 1
	ExitUsage            = 2
	ExitMissingReference = 3
	ExitInvariant        = 4
	ExitCanceled         = 130
)

// Execute runs the enrollsync CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "enrollsync",
		Short:   "Reconcile clearinghouse enrollments with the CRM",
		Version: a.version,
		Long: `enrollsync reconciles National Student Clearinghouse enrollment
records with the enrollment records kept in the CRM.

A run has three steps: import turns a clearinghouse detail report into an
enrollment table, merge matches that table against the CRM and writes the
insert, update and contact flag files, and apply pushes an update file
back into a PostgreSQL CRM.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.flags.configFile, "config", "", "config file (default is $HOME/.enrollsync.yaml)")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	f.BoolVarP(&a.flags.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	f.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
	f.StringVarP(&a.flags.output, "output", "o", "", "output format: table, json, yaml")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	f.StringVar(&a.flags.logFormat, "log-format", "", "log format: auto, console, json")

	rootCmd.SetVersionTemplate("enrollsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if a.flags.configFile != "" {
		config, err := LoadConfig(a.flags.configFile)
		if err != nil {
			return errors.WrapResource("load", "config", a.flags.configFile, err)
		}
		a.config = config
	}
	a.config.UpdateFromFlags(a.flags)

	logger := NewLogger(a.config)
	logging.SetDefault(logger)
	ctx := logging.WithRun(logging.WithLogger(cmd.Context(), &logger), a.runID)
	a.logger = logging.FromContext(ctx)
	cmd.SetContext(ctx)

	if a.config.ConfigFile != "" {
		a.logger.Debug().Str("file", a.config.ConfigFile).Msg("Using config file")
	}
	return nil
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsMissingReference(err):
		return ExitMissingReference
	case errors.IsInvariant(err):
		return ExitInvariant
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.IsValidationError(err):
		return ExitUsage
	default:
		var cfg *errors.ConfigError
		if errors.As(err, &cfg) {
			return ExitUsage
		}
		return ExitFailure
	}
}

// ExitOnError prints err and exits with its exit code.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("enrollsync: " + err.Error() + "\n")
		os.Exit(ExitCode(err))
	}
}
