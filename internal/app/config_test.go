package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STOKKAS_TEST_MODE", "1")
	RefreshTestMode()
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
	assert.False(t, cfg.DBAutoMigrate)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("STOKKAS_TEST_MODE", "1")
	RefreshTestMode()
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_TIMEZONE")
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("STOKKAS_TEST_MODE", "1")
	RefreshTestMode()
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestNilConfigLocationIsUTC(t *testing.T) {
	var cfg *Config
	assert.Equal(t, time.UTC, cfg.Location())
}
