package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("FARMKEEPER_DB", "/tmp/env.db")
	t.Setenv("FARMKEEPER_REQUEST_TIMEOUT", "2s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "/tmp/env.db", cfg.DatabasePath)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseEnv_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FARMKEEPER_LOG_LEVEL=debug\n"), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("FARMKEEPER_LOG_LEVEL") })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseEnv_Malformed(t *testing.T) {
	t.Setenv("FARMKEEPER_REQUEST_TIMEOUT", "soon")

	require.Panics(t, func() { parseEnv(&Config{}) })
}
