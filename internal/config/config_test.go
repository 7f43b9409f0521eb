package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(CookieFallbackEnv, "")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "local", cfg.State.Backend)
	assert.Equal(t, ".stagehand", cfg.State.Dir)
	assert.True(t, cfg.State.UseSSL)
	assert.False(t, cfg.State.Encrypt)
	assert.Equal(t, 10, cfg.Apply.Parallelism)
	assert.Equal(t, 60*time.Second, cfg.Roblox.Timeout)
	assert.Equal(t, "https://develop.roblox.com", cfg.Roblox.DevelopBaseURL)
	assert.Empty(t, cfg.Roblox.Cookie)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STAGEHAND_LOG_LEVEL", "debug")
	t.Setenv("STAGEHAND_STATE_BACKEND", "s3")
	t.Setenv("STAGEHAND_STATE_DYNAMODB_TABLE", "locks")
	t.Setenv("STAGEHAND_APPLY_PARALLELISM", "3")
	t.Setenv("STAGEHAND_ROBLOX_TIMEOUT", "5s")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "s3", cfg.State.Backend)
	assert.Equal(t, "locks", cfg.State.DynamoDBTable)
	assert.Equal(t, 3, cfg.Apply.Parallelism)
	assert.Equal(t, 5*time.Second, cfg.Roblox.Timeout)
}

func TestLoadConfigCookie(t *testing.T) {
	t.Run("fallback variable", func(t *testing.T) {
		t.Setenv(CookieFallbackEnv, "from-fallback")
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "from-fallback", cfg.Roblox.Cookie)
	})

	t.Run("prefixed variable wins", func(t *testing.T) {
		t.Setenv(CookieFallbackEnv, "from-fallback")
		t.Setenv("STAGEHAND_ROBLOX_COOKIE", "primary")
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "primary", cfg.Roblox.Cookie)
	})
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STAGEHAND_HISTORY_PATH=/tmp/h.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("STAGEHAND_HISTORY_PATH") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", cfg.History.Path)
}
