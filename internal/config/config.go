// Package config holds covkit configuration: defaults, YAML file loading,
// and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all covkit configuration.
type Config struct {
	// Merge settings
	Merge MergeConfig `yaml:"merge"`

	// Run history storage
	History HistoryConfig `yaml:"history"`

	// Watch mode
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// MergeConfig configures tracefile merging.
type MergeConfig struct {
	// Lossy resolves start-line and checksum conflicts by taking the
	// incoming value instead of failing the merge.
	Lossy bool `yaml:"lossy"`

	// Workers bounds concurrent tracefile reads. 0 means one per input.
	Workers int `yaml:"workers"`
}

// HistoryConfig configures the coverage run history database.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Merge: MergeConfig{
			Workers: 4,
		},
		History: HistoryConfig{
			DatabasePath: "data/covkit.db",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if db := os.Getenv("COVKIT_DB"); db != "" {
		c.History.DatabasePath = db
	}
	if level := os.Getenv("COVKIT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("COVKIT_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Merge.Workers < 0 {
		return fmt.Errorf("merge.workers must be >= 0, got %d", c.Merge.Workers)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0, got %v", c.Watch.Debounce)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q", c.Logging.Level)
	}
	return nil
}
