// Package appcontext provides the shared application context interface
// used by all commands. This eliminates interface duplication across
// command packages and provides a single source of truth for app dependencies.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync"
	"github.com/agentstation/enrollsync/internal/config"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/enrollsync/app automatically implements this interface,
// providing dependency injection for commands while maintaining testability.
//
// Commands should accept this interface rather than the concrete App type,
// allowing for easier testing with mock implementations.
type Interface interface {
	// Client builds an enrollsync client from the run settings plus opts.
	// The returned close function releases the CRM connection, if any.
	Client(ctx context.Context, opts ...enrollsync.Option) (enrollsync.Client, func() error, error)

	// Run returns the run settings loaded from config and environment.
	Run() *config.Run

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// RunID identifies this invocation in logs and reports.
	RunID() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
