package app

import (
	"github.com/agentstation/enrollsync/internal/config"
)

// Config holds the application configuration loaded from config files,
// ENROLLSYNC_* environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// ConfigFile is the config file in use, if any
	ConfigFile string

	// Logging configuration. LogLevel is the --log-level flag, EnvLogLevel
	// the level found in config or environment.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string

	// Run holds the import, merge and apply settings
	Run config.Run
}

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	output     string
	logLevel   string
	logFormat  string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. ENROLLSYNC_* environment variables
//  3. .env.local, then .env
//  4. Config file (configFile, or ~/.enrollsync.yaml and ./.enrollsync.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	config.LoadEnvFiles()

	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}
	run, err := config.LoadRun(v)
	if err != nil {
		return nil, err
	}

	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	return &Config{
		Output:      v.GetString("output"),
		ConfigFile:  v.ConfigFileUsed(),
		EnvLogLevel: v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		LogOutput:   v.GetString("log_output"),
		Run:         run,
	}, nil
}

// UpdateFromFlags copies parsed flag values over the loaded configuration.
// Flags win over config file and environment.
func (c *Config) UpdateFromFlags(f globalFlags) {
	c.Verbose = f.verbose
	c.Quiet = f.quiet
	c.NoColor = f.noColor
	if f.output != "" {
		c.Output = f.output
	}
	c.LogLevel = f.logLevel
	if f.logFormat != "" {
		c.LogFormat = f.logFormat
	}
}
