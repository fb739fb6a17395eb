// Package config loads the driver settings from borrowck.toml.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// FileName is the config file looked up in the working directory when no
// path is given.
const FileName = "borrowck.toml"

// Config holds the driver settings.
type Config struct {
	Workers     int           `toml:"workers"`
	Timeout     time.Duration `toml:"-"`
	LogLevel    string        `toml:"log_level"`
	Color       bool          `toml:"color"`
	DumpRegions bool          `toml:"dump_regions"`
	Debug       bool          `toml:"debug"`
}

// tomlConfig is the config as it is encoded in TOML. Durations are written
// as strings such as "30s".
type tomlConfig struct {
	Workers     int    `toml:"workers"`
	Timeout     string `toml:"timeout"`
	LogLevel    string `toml:"log_level"`
	Color       *bool  `toml:"color"`
	DumpRegions bool   `toml:"dump_regions"`
	Debug       bool   `toml:"debug"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Color:    true,
	}
}

// Load reads path. An empty path means FileName, which may be missing.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = FileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(err, "load config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return cfg, nil
}

// Parse decodes and validates a TOML document.
func Parse(data []byte) (*Config, error) {
	var tc tomlConfig
	if err := toml.Unmarshal(data, &tc); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	cfg := Default()
	cfg.Workers = tc.Workers
	cfg.DumpRegions = tc.DumpRegions
	cfg.Debug = tc.Debug
	if tc.LogLevel != "" {
		cfg.LogLevel = tc.LogLevel
	}
	if tc.Color != nil {
		cfg.Color = *tc.Color
	}
	if tc.Timeout != "" {
		d, err := time.ParseDuration(tc.Timeout)
		if err != nil {
			return nil, errors.Wrapf(err, "timeout %q", tc.Timeout)
		}
		cfg.Timeout = d
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogLevels lists the accepted log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	for _, l := range LogLevels {
		if c.LogLevel == l {
			return nil
		}
	}
	return errors.Errorf("unknown log_level %q", c.LogLevel)
}
