// Package config defines runtime configuration for the editing core
// and loads it from TOML or YAML files with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "EDITKIT_"

// Config holds all tunables for the core.
type Config struct {
	History HistoryConfig `toml:"history" yaml:"history"`
	Rope    RopeConfig    `toml:"rope" yaml:"rope"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
}

// HistoryConfig tunes the undo/redo stacks.
type HistoryConfig struct {
	// MaxEntries caps the undo stack; oldest entries are evicted.
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
}

// RopeConfig tunes text storage.
type RopeConfig struct {
	// MaxLeafSize is advisory; the tree fuses adjacent leaves whose
	// combined size stays below it.
	MaxLeafSize int `toml:"max_leaf_size" yaml:"max_leaf_size"`
}

// LogConfig tunes logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// StoreConfig tunes bookmark persistence.
type StoreConfig struct {
	// Path is the bolt database file for persisted bookmarks. Empty
	// disables persistence.
	Path string `toml:"path" yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{MaxEntries: 1000},
		Rope:    RopeConfig{MaxLeafSize: 1024},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the file at path, merging it over defaults and applying
// environment overrides last. Format is chosen by extension: .toml, or
// .yaml/.yml. A missing file is not an error; defaults plus environment
// are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to env overrides.
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := unmarshal(path, data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	return nil
}

// applyEnv overlays EDITKIT_* variables onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPrefix + "HISTORY_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.History.MaxEntries = n
		}
	}
	if v := os.Getenv(EnvPrefix + "ROPE_MAX_LEAF_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Rope.MaxLeafSize = n
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "STORE_PATH"); v != "" {
		c.Store.Path = v
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative, got %d", c.History.MaxEntries)
	}
	if c.Rope.MaxLeafSize < 0 {
		return fmt.Errorf("rope.max_leaf_size must not be negative, got %d", c.Rope.MaxLeafSize)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not a known level", c.Log.Level)
	}
	return nil
}
