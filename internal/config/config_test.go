package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Demo.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Demo.CleanupInterval)
	assert.Equal(t, "data/state.json", cfg.Store.StatePath)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9999"
demo:
  enabled: true
  cleanup_interval: 1m
upstream:
  base_url: https://api.example.com/v1
  page_id: pg1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.True(t, cfg.Demo.Enabled)
	assert.Equal(t, time.Minute, cfg.Demo.CleanupInterval)
	assert.Equal(t, "https://api.example.com/v1", cfg.Upstream.BaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9999\"\n"), 0o644))

	t.Setenv("SANDBOX_SERVER__PORT", "7777")
	t.Setenv("SANDBOX_DEMO__ENABLED", "true")
	t.Setenv("SANDBOX_SERVER__METRICS_PORT", "7778")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7777", cfg.Server.Port)
	assert.Equal(t, "7778", cfg.Server.MetricsPort)
	assert.True(t, cfg.Demo.Enabled)
}

func TestLoad_MissingFileIsSkipped(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("SANDBOX_LOG__LEVEL", "loud")

	_, err := Load("")

	assert.Error(t, err)
}
