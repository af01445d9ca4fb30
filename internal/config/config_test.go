package config

import (
	"testing"
	"time"

	"goldendash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SCAN_CONCURRENCY", "")
	t.Setenv("LEADERBOARD_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 2, cfg.Scan.Concurrency)
	assert.Equal(t, time.Hour, cfg.Cache.LeaderboardTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GOLDEN_DEPLOYMENT_API_TOKEN", "secret")
	t.Setenv("LEADERBOARD_TTL", "5m")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("SCAN_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, 5*time.Minute, cfg.Cache.LeaderboardTTL)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, 2, cfg.Scan.Concurrency)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("PORT", "http")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
