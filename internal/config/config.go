// Package config loads depconv settings from defaults, an optional TOML
// file and DEPCONV_* environment variables, in increasing precedence.
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/matzehuels/depconv/pkg/convert"
	derrors "github.com/matzehuels/depconv/pkg/errors"
)

const (
	appName   = "depconv"
	fileName  = "config.toml"
	envPrefix = "DEPCONV"
)

// Config holds user preferences for the CLI.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	DefaultFrom string `mapstructure:"default_from"` // empty means auto-detect
	DefaultTo   string `mapstructure:"default_to"`
	Readme      bool   `mapstructure:"readme"` // append readme to egginfo and wheel output
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		DefaultTo: convert.Pip.String(),
		Readme:    true,
	}
}

// WithDefaults returns a copy of c with empty string fields filled from
// [Default]. Readme is left as is since false is a meaningful choice.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.DefaultTo == "" {
		c.DefaultTo = d.DefaultTo
	}
	return c
}

// Level returns the parsed log level.
func (c Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// Validate checks that levels and format names are known.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "log_level")
	}
	if c.DefaultFrom != "" {
		if _, err := convert.ParseFormat(c.DefaultFrom); err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "default_from")
		}
	}
	if _, err := convert.ParseFormat(c.DefaultTo); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "default_to")
	}
	return nil
}

// Dir returns the configuration directory ($XDG_CONFIG_HOME/depconv or
// ~/.config/depconv).
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Load reads the configuration. A non-empty path must name an existing
// file; otherwise config.toml in [Dir] is used when present. It returns
// the loaded configuration and the file it was read from, if any.
func Load(path string) (Config, string, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("default_from", d.DefaultFrom)
	v.SetDefault("default_to", d.DefaultTo)
	v.SetDefault("readme", d.Readme)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path == "" {
		if dir, err := Dir(); err == nil {
			if candidate := filepath.Join(dir, fileName); fileExists(candidate) {
				path = candidate
			}
		}
	} else if !fileExists(path) {
		return Config{}, "", derrors.New(derrors.ErrCodeFileNotFound, "config file %s does not exist", path)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "decode config")
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
