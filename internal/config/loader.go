package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "pddl.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/pddl"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger

	// UserFile overrides the user config path. Empty means
	// ~/.config/pddl/config.yaml.
	UserFile string
	// StartDir is where the project file search begins. Empty means the
	// working directory.
	StartDir string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/pddl/config.yaml)
// 3. Project config (pddl.yaml in the start directory or its parents)
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	if userPath := l.userConfigPath(); userPath != "" {
		if err := config.mergeFile(userPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userPath))
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userPath), slog.String("error", err.Error()))
		}
	}

	start, err := l.startDir()
	if err != nil {
		return nil, err
	}
	config.Root = start
	if projectPath := findProjectConfig(start); projectPath != "" {
		if err := config.mergeFile(projectPath); err != nil {
			return nil, err
		}
		config.Root = filepath.Dir(projectPath)
		l.logger.Debug("Loaded project config", slog.String("path", projectPath))
	} else {
		l.logger.Debug("No project config found")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	path := l.userConfigPath()
	if path == "" {
		return "", errors.New("no home directory")
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := DefaultConfig().SaveToFile(path); err != nil {
		return "", err
	}
	l.logger.Info("Created default user config", slog.String("path", path))
	return path, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	if l.UserFile != "" {
		return l.UserFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

func (l *Loader) startDir() (string, error) {
	if l.StartDir != "" {
		return filepath.Abs(l.StartDir)
	}
	return os.Getwd()
}

// findProjectConfig searches for pddl.yaml in dir and its parents
func findProjectConfig(dir string) string {
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
