// Package config resolves run settings from flags, environment and an
// optional config file.
//
// Precedence, highest first: a flag set on the command line, a TYPETRACE_*
// environment variable, the config file, the built-in default.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/typetrace/internal/source"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "TYPETRACE"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Keys are the settings Load resolves. Each key doubles as the flag name
// and, upper-cased, as the environment variable suffix.
var Keys = []string{"multiline", "index", "verbose", "color"}

// Config holds the resolved settings of one invocation.
type Config struct {
	// Multiline selects array mode for the input.
	Multiline bool `mapstructure:"multiline"`

	// Index is the SQLite kind index path. Empty disables indexing.
	Index string `mapstructure:"index"`

	// Verbose lowers the log level to debug and logs per-kind counts.
	Verbose bool `mapstructure:"verbose"`

	// Color is one of auto, always or never.
	Color string `mapstructure:"color"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Color: ColorAuto,
	}
}

// Mode returns the input framing selected by the config.
func (c *Config) Mode() source.Mode {
	if c.Multiline {
		return source.ArrayMode
	}
	return source.LineMode
}

// Load resolves the config. file may be empty; a named file that cannot be
// read is an error. flags may be nil; only flags named in Keys are bound.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("multiline", def.Multiline)
	v.SetDefault("index", def.Index)
	v.SetDefault("verbose", def.Verbose)
	v.SetDefault("color", def.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	if flags != nil {
		for _, key := range Keys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, c.Color) {
		return &ConfigError{Field: "color", Message: fmt.Sprintf("must be auto, always or never, got %q", c.Color)}
	}
	return nil
}

// ConfigError represents an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
