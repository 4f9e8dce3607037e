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
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Minute, cfg.AuthCodeLifetime)
	assert.Equal(t, time.Hour, cfg.AccessTokenLifetime)
	assert.Equal(t, 1000, cfg.RateLimitDefault)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bookdesk")
	t.Setenv("ACCESS_TOKEN_LIFETIME", "30m")
	t.Setenv("RATE_LIMIT_DEFAULT", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/bookdesk", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenLifetime)
	assert.Equal(t, 25, cfg.RateLimitDefault)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("database_url: postgres://file/db\nrate_limit_default: 42\nlog_level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	assert.Equal(t, 42, cfg.RateLimitDefault)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_WINDOW")
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	cfg.DatabaseURL = "postgres://localhost/bookdesk"
	require.NoError(t, cfg.Validate())

	cfg.RateLimitDefault = 0
	require.Error(t, cfg.Validate())
}
