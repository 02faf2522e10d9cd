package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	loggerKey contextKey = iota
	runIDKey
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithRun tags the context logger with the run id of an import or merge.
func WithRun(ctx context.Context, runID string) context.Context {
	ctx = context.WithValue(ctx, runIDKey, runID)
	return withField(ctx, "run_id", runID)
}

// RunID extracts the run id from context.
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

func withField(ctx context.Context, key string, value any) context.Context {
	logger := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithStep adds the pipeline step (import, merge, apply) to the logger.
func WithStep(ctx context.Context, step string) context.Context {
	return withField(ctx, "step", step)
}

// WithStudent adds a student id to the logger.
func WithStudent(ctx context.Context, studentID string) context.Context {
	return withField(ctx, "student_id", studentID)
}
