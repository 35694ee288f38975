package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FINMETRIX_DATA_DIR", t.TempDir())
	t.Setenv("FINMETRIX_PORT", "")
	t.Setenv("DEV_MODE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SNAPSHOT_BUCKET", "")
	t.Setenv("SNAPSHOT_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8050, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	require.NotNil(t, cfg.Snapshot)
	assert.False(t, cfg.Snapshot.Enabled)
	assert.Equal(t, "0 0 3 * * *", cfg.Snapshot.Schedule)
	assert.Equal(t, 30, cfg.Snapshot.RetentionDays)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FINMETRIX_DATA_DIR", t.TempDir())
	t.Setenv("FINMETRIX_PORT", "9000")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("FINMETRIX_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSnapshotEnabledByBucket(t *testing.T) {
	t.Setenv("FINMETRIX_DATA_DIR", t.TempDir())
	t.Setenv("SNAPSHOT_BUCKET", "finmetrix-backups")
	t.Setenv("SNAPSHOT_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Snapshot.Enabled)
	assert.Equal(t, "finmetrix-backups", cfg.Snapshot.Bucket)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{Port: 0, Snapshot: &SnapshotConfig{}}
	assert.Error(t, cfg.Validate())

	cfg.Port = 99999
	assert.Error(t, cfg.Validate())

	cfg.Port = 8050
	assert.NoError(t, cfg.Validate())
}

func TestValidateSnapshotNeedsBucket(t *testing.T) {
	cfg := &Config{Port: 8050, Snapshot: &SnapshotConfig{Enabled: true}}
	assert.Error(t, cfg.Validate())

	cfg.Snapshot.Bucket = "some-bucket"
	assert.NoError(t, cfg.Validate())
}

func TestLoadWatchlist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tickers:\n  - AAPL\n  - MSFT\n"), 0644))

	wl := loadWatchlist(path)
	assert.Equal(t, []string{"AAPL", "MSFT"}, wl.Tickers)
}

func TestLoadWatchlistMissingFile(t *testing.T) {
	wl := loadWatchlist(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Empty(t, wl.Tickers)
}

func TestLoadWatchlistMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tickers: {not valid"), 0644))

	wl := loadWatchlist(path)
	assert.Empty(t, wl.Tickers)
}
