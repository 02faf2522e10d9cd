package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync/pkg/constants"
)

// Config describes where and how a run logs.
type Config struct {
	Level string // trace, debug, info, warn, error, off

	// Format is json, console or auto. Auto picks console when stderr is
	// a terminal.
	Format string

	// Output is stderr, stdout, discard or the path of a log file the run
	// appends to.
	Output string

	NoColor   bool
	AddCaller bool

	// Fields are attached to every event.
	Fields map[string]any
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// NewLoggerFromConfig builds a logger for cfg and sets the zerolog global
// level to match. A nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	c := zerolog.New(writerFor(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		c = c.Caller()
	}
	for k, v := range cfg.Fields {
		c = addField(c, k, v)
	}
	return c.Logger()
}

func writerFor(cfg *Config) io.Writer {
	out := openOutput(cfg.Output)

	console := false
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		console = true
	case "", "auto":
		console = out == os.Stderr && stderrIsTerminal()
	}
	if !console {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}
}

// openOutput falls back to stderr when a log file cannot be opened.
func openOutput(name string) io.Writer {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr
	}
	return f
}

func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(level)
	switch level {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(level); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

func addField(c zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return c.Str(key, v)
	case int:
		return c.Int(key, v)
	case bool:
		return c.Bool(key, v)
	case time.Time:
		return c.Time(key, v)
	case error:
		return c.AnErr(key, v)
	}
	return c.Interface(key, value)
}
