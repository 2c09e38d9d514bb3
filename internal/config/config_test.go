package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, time.Second, config.Workspace.ParseDelay)
	assert.Equal(t, []string{"git"}, config.Workspace.ExcludedSchemes)
	assert.Contains(t, config.Watch.Include, "**/*.pddl")
	assert.Contains(t, config.Watch.IgnoreDirs, ".git")
	assert.Equal(t, filepath.Join(".pddl", "workspace.db"), config.Store.Path)
	assert.False(t, config.Preprocess.Enabled)
	require.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "zero delay", modify: func(c *Config) { c.Workspace.ParseDelay = 0 }},
		{name: "json format", modify: func(c *Config) { c.Log.Format = "JSON" }},
		{name: "negative delay", modify: func(c *Config) { c.Workspace.ParseDelay = -time.Second }, wantErr: "parse_delay"},
		{name: "negative timeout", modify: func(c *Config) { c.Preprocess.Timeout = -1 }, wantErr: "preprocess.timeout"},
		{name: "unknown format", modify: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "unknown level", modify: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	lvl, err := LogConfig{Level: "debug"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
workspace:
  parse_delay: 250ms
log:
  level: debug
associations:
  problems:
    p1.pddl: domain.pddl
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, config.Workspace.ParseDelay)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format, "unset keys keep defaults")
	assert.Equal(t, []string{"git"}, config.Workspace.ExcludedSchemes)
	assert.Equal(t, map[string]string{"p1.pddl": "domain.pddl"}, config.Associations.Problems)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspace: [\n"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := DefaultConfig()
	config.Workspace.ParseDelay = 3 * time.Second
	config.Preprocess.Enabled = true
	require.NoError(t, config.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, loaded.Workspace.ParseDelay)
	assert.True(t, loaded.Preprocess.Enabled)
}

func TestStorePath(t *testing.T) {
	config := DefaultConfig()
	config.Root = "/work"
	assert.Equal(t, filepath.Join("/work", ".pddl", "workspace.db"), config.StorePath())

	config.Store.Path = "/var/lib/pddl.db"
	assert.Equal(t, "/var/lib/pddl.db", config.StorePath())

	config.Store.Path = ""
	assert.Empty(t, config.StorePath())
}
