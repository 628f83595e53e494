// Package config provides configuration loading for the workflow engine.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/adwkit/adw/pkg/models"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the engine-wide settings: logging, default retry policy and
// run-log persistence. Per-run options still override everything here.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Retry       RetryConfig       `yaml:"retry"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// LogConfig controls the process-wide slog handler.
type LogConfig struct {
	Level  string `yaml:"level"  validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text pretty"`
}

// RetryConfig mirrors the workflow retry policy in file-friendly units.
// Zero fields inherit the library default.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"       validate:"omitempty,min=1"`
	InitialDelay      time.Duration `yaml:"initial_delay"      validate:"omitempty,min=0"`
	MaxDelay          time.Duration `yaml:"max_delay"          validate:"omitempty,min=0"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" validate:"omitempty,min=1"`
	JitterFactor      float64       `yaml:"jitter_factor"      validate:"min=0,max=1"`
}

// PersistenceConfig controls run-log persistence.
type PersistenceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Default returns the engine defaults used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		Retry: RetryConfig{JitterFactor: 0.1},
		Persistence: PersistenceConfig{
			Dir: "./data/adw",
		},
	}
}

// Load reads a YAML config file, applies environment overrides and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOrDefault loads the given file, falling back to the environment-adjusted
// defaults when the file does not exist. Any other load failure (malformed
// YAML, invalid values) also falls back, but is logged first.
func LoadOrDefault(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to load config, using defaults", "path", path, "error", err)
		}

		cfg = Default()
		cfg.applyEnv()
	}

	return cfg
}

// applyEnv layers ADW_* environment variables over the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("ADW_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if v := os.Getenv("ADW_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}

	if v := os.Getenv("ADW_LOG_DIR"); v != "" {
		c.Persistence.Dir = v
		c.Persistence.Enabled = true
	}

	if v := os.Getenv("ADW_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxAttempts = n
		}
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Persistence.Enabled && c.Persistence.Dir == "" {
		return fmt.Errorf("persistence.dir is required when persistence is enabled")
	}

	return nil
}

// RetryPolicy converts the configured retry overrides to the workflow retry
// policy, merged over the library default.
func (c *Config) RetryPolicy() models.RetryConfig {
	return models.MergeRetryConfig(models.DefaultRetryConfig(), &models.RetryConfig{
		MaxAttempts:       c.Retry.MaxAttempts,
		InitialDelay:      c.Retry.InitialDelay,
		MaxDelay:          c.Retry.MaxDelay,
		BackoffMultiplier: c.Retry.BackoffMultiplier,
		JitterFactor:      c.Retry.JitterFactor,
	})
}

var validate = validator.New(validator.WithRequiredStructEnabled())
