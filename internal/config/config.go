// Package config loads the layered YAML configuration of the pddl tool.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration.
type Config struct {
	Workspace    WorkspaceConfig    `yaml:"workspace"`
	Watch        WatchConfig        `yaml:"watch"`
	Store        StoreConfig        `yaml:"store"`
	Log          LogConfig          `yaml:"log"`
	Associations AssociationsConfig `yaml:"associations"`
	Preprocess   PreprocessConfig   `yaml:"preprocess"`
	Metrics      MetricsConfig      `yaml:"metrics"`

	// Root is the workspace root: the directory of the project file, or the
	// working directory when there is none.
	Root string `yaml:"-"`
}

// WorkspaceConfig configures re-parsing.
type WorkspaceConfig struct {
	// ParseDelay is the debounce delay between an edit and the batch re-parse
	ParseDelay time.Duration `yaml:"parse_delay"`
	// ExcludedSchemes are URI schemes never tracked
	ExcludedSchemes []string `yaml:"excluded_schemes"`
}

// WatchConfig configures the file watcher and the initial scan.
type WatchConfig struct {
	// Include are doublestar globs relative to the root
	Include []string `yaml:"include"`
	// IgnoreDirs are directory names never descended into
	IgnoreDirs []string `yaml:"ignore_dirs"`
}

// StoreConfig configures the association store.
type StoreConfig struct {
	// Path of the bbolt file, relative to the root unless absolute. Empty
	// disables persistence.
	Path string `yaml:"path"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AssociationsConfig holds explicit overrides applied at startup. Keys and
// values are paths relative to the root.
type AssociationsConfig struct {
	Problems map[string]string `yaml:"problems"`
	Plans    map[string]string `yaml:"plans"`
}

// PreprocessConfig configures ";;!pre-parsing:" commands.
type PreprocessConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig configures the Prometheus endpoint of "pddl watch".
type MetricsConfig struct {
	// Addr is the listen address, e.g. "localhost:9464". Empty disables it.
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			ParseDelay:      time.Second,
			ExcludedSchemes: []string{"git"},
		},
		Watch: WatchConfig{
			Include:    []string{"**/*.pddl", "**/*.plan", "**/*.happenings"},
			IgnoreDirs: []string{".git", "node_modules", ".venv", "vendor", ".idea", ".vscode", ".pddl"},
		},
		Store: StoreConfig{
			Path: filepath.Join(".pddl", "workspace.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Preprocess: PreprocessConfig{
			Enabled: false,
			Timeout: 10 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Workspace.ParseDelay < 0 {
		return fmt.Errorf("workspace.parse_delay must not be negative")
	}
	if c.Preprocess.Timeout < 0 {
		return fmt.Errorf("preprocess.timeout must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// StorePath returns the absolute store path, or "" when disabled.
func (c *Config) StorePath() string {
	if c.Store.Path == "" || filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Root, c.Store.Path)
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.mergeFile(path); err != nil {
		return nil, err
	}
	return config, nil
}

// mergeFile decodes a YAML file over c. Keys absent from the file keep
// their current value.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
