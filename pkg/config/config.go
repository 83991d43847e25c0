// Package config loads settings from a YAML file and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Veraticus/inactive/pkg/idle"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for inactive
type Config struct {
	// Idle source selection
	Backend string `yaml:"backend" env:"INACTIVE_BACKEND"`
	Display string `yaml:"display" env:"INACTIVE_DISPLAY"`

	// Supervised runs
	Signal         string `yaml:"signal" env:"INACTIVE_SIGNAL"`
	PTY            bool   `yaml:"pty" env:"INACTIVE_PTY"`
	ForwardSignals bool   `yaml:"forward_signals" env:"INACTIVE_FORWARD_SIGNALS"`

	Log LogConfig `yaml:"log"`
}

// LogConfig holds diagnostics settings
type LogConfig struct {
	Verbose bool   `yaml:"verbose" env:"INACTIVE_DEBUG"`
	Format  string `yaml:"format" env:"INACTIVE_LOG_FORMAT"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend:        string(idle.BackendAuto),
		Signal:         "15",
		ForwardSignals: true,
		Log: LogConfig{
			Format: "text",
		},
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadFile(getConfigPath())
}

// LoadFile is Load with an explicit config file path. A missing file is not
// an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to load config file")
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load from environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// SignalNumber returns the configured signal.
func (c *Config) SignalNumber() (syscall.Signal, error) {
	return ParseSignal(c.Signal)
}

// IdleBackend returns the configured idle backend.
func (c *Config) IdleBackend() (idle.Backend, error) {
	return idle.ParseBackend(c.Backend)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.IdleBackend(); err != nil {
		return err
	}

	if _, err := c.SignalNumber(); err != nil {
		return errors.Wrap(err, "signal")
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("INACTIVE_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "inactive", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "inactive", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var, flag or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if backend := os.Getenv("INACTIVE_BACKEND"); backend != "" {
		cfg.Backend = backend
	}

	if display := os.Getenv("INACTIVE_DISPLAY"); display != "" {
		cfg.Display = display
	}

	if sig := os.Getenv("INACTIVE_SIGNAL"); sig != "" {
		cfg.Signal = sig
	}

	if format := os.Getenv("INACTIVE_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"INACTIVE_PTY", &cfg.PTY},
		{"INACTIVE_FORWARD_SIGNALS", &cfg.ForwardSignals},
		{"INACTIVE_DEBUG", &cfg.Log.Verbose},
	}
	for _, b := range bools {
		value := os.Getenv(b.name)
		if value == "" {
			continue
		}
		v, err := parseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid %s value", b.name)
		}
		*b.dst = v
	}

	return nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, errors.Errorf("%q (use true/false)", value)
}
