package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": "8080"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./static", cfg.Server.StaticDir)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, "file", cfg.History.Type)
	assert.Equal(t, "dermscan_saved.json", cfg.History.Path)
	assert.Equal(t, "rest", cfg.Analyzer.Type)
}

func TestLoadConfig_SQLiteDefaultPath(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": "8080"}, "history": {"type": "sqlite"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dermscan.db", cfg.History.Path)
}

func TestLoadConfig_PortRequired(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "port is not set")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `not json`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestGetConfigPath_Env(t *testing.T) {
	t.Setenv("DERMSCAN_CONFIG", "/etc/dermscan/config.json")
	assert.Equal(t, "/etc/dermscan/config.json", GetConfigPath())
}
