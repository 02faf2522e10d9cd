// Package config loads the run settings of enrollsync from config files,
// ENROLLSYNC_* environment variables and .env files.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Viper.
const EnvPrefix = "ENROLLSYNC"

// LoadEnvFiles loads environment variables from .env files. Variables
// already set win, then .env.local, then .env.
func LoadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// NewViper returns a Viper instance bound to ENROLLSYNC_* variables that
// reads configFile, or ~/.enrollsync.yaml and ./.enrollsync.yaml when
// configFile is empty. A missing config file is not an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".enrollsync")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return v, nil
}
