package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cleanup := func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("S3_ACCESS_KEY_ID")
		os.Unsetenv("S3_SECRET_ACCESS_KEY")
		os.Unsetenv("S3_BUCKET")
		os.Unsetenv("CLEANUP_CONFIRMATION_CODE")
		os.Unsetenv("RETENTION_WINDOW")
		os.Unsetenv("FETCH_BATCH_SIZE")
	}

	t.Run("loads_defaults_without_any_env", func(t *testing.T) {
		cleanup()
		cfg, err := Load()
		assert.NoError(t, err)
		assert.Equal(t, ":8086", cfg.HTTPAddr)
		assert.Equal(t, "analytics", cfg.Bucket)
		assert.Equal(t, "session-", cfg.SessionPrefix)
		assert.Equal(t, "analytics-", cfg.LegacyPrefix)
		assert.Equal(t, 200, cfg.FetchBatchSize)
		assert.Equal(t, 30*24*time.Hour, cfg.RetentionWindow)
		assert.Equal(t, "DELETE_ALL_LOGS_CONFIRM", cfg.CleanupConfirmationCode)
	})

	t.Run("storage_unconfigured_without_credentials", func(t *testing.T) {
		cleanup()
		cfg, err := Load()
		assert.NoError(t, err)
		assert.False(t, cfg.StorageConfigured())
	})

	t.Run("storage_configured_with_both_credentials", func(t *testing.T) {
		cleanup()
		os.Setenv("S3_ACCESS_KEY_ID", "minioadmin")
		os.Setenv("S3_SECRET_ACCESS_KEY", "minioadmin")
		defer cleanup()

		cfg, err := Load()
		assert.NoError(t, err)
		assert.True(t, cfg.StorageConfigured())
	})

	t.Run("env_overrides_apply", func(t *testing.T) {
		cleanup()
		os.Setenv("FETCH_BATCH_SIZE", "50")
		os.Setenv("RETENTION_WINDOW", "168h")
		defer cleanup()

		cfg, err := Load()
		assert.NoError(t, err)
		assert.Equal(t, 50, cfg.FetchBatchSize)
		assert.Equal(t, 7*24*time.Hour, cfg.RetentionWindow)
	})

	t.Run("invalid_duration_falls_back_to_default", func(t *testing.T) {
		cleanup()
		os.Setenv("RETENTION_WINDOW", "a fortnight")
		defer cleanup()

		cfg, err := Load()
		assert.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, cfg.RetentionWindow)
	})
}
