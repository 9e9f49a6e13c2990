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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "wellness-hub", cfg.App.Name)
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.True(t, cfg.Events.Async)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Redis.SnapshotResyncInterval)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, []string{FeatureCareerRecommendation}, cfg.Features.Enabled())
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=9000\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "svc")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://svc:pw@db:5432/wellness?sslmode=disable", cfg.Database.URL)
}

func TestLoad_SinkFlagsRequireConnections(t *testing.T) {
	t.Setenv("FEATURE_SINK_NOTIFICATION_ARCHIVE", "true")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load(filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load(filepath.Join(t.TempDir(), "none"))
	assert.Error(t, err)
}

func TestFeatureFlags(t *testing.T) {
	t.Setenv("FEATURE_CAREER_RECOMMENDATION", "false")
	t.Setenv("FEATURE_SINK_NOTIFICATION_RELAY", "1")

	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled(FeatureCareerRecommendation))
	assert.True(t, ff.IsEnabled(FeatureSinkNotificationRelay))
	assert.False(t, ff.IsEnabled("unknown.flag"))

	require.NoError(t, ff.EnableFeature(FeatureSinkSnapshotCache))
	assert.True(t, ff.IsEnabled(FeatureSinkSnapshotCache))
	assert.ErrorIs(t, ff.DisableFeature("unknown.flag"), ErrFeatureNotFound)
	assert.Equal(t, "FEATURE_SINK_SNAPSHOT_CACHE", featureNameToEnvKey(FeatureSinkSnapshotCache))
}
