package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamberlog/internal/platform/config"
)

func TestNewRequiresDataDir(t *testing.T) {
	t.Parallel()
	_, err := config.New("")
	require.Error(t, err)
}

func TestLoadReturnsDefaultsWithoutFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(dir, ".chamberlog", "chamberlog.db"), cfg.DBPath)
	assert.Nil(t, cfg.Profile)
	_, found := cfg.FilePath()
	assert.False(t, found)
}

func TestLoadOverlaysYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := `
tick_interval: 500ms
logging:
  level: debug
  format: json
profile:
  reference: start
  roster: ["A", "B"]
  events:
    - key: start
      label: Start
    - key: stop
      label: Stop
  rules:
    - id: span
      label: Span
      start: start
      end: stop
`
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".chamberlog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".chamberlog", "config.yaml"), []byte(raw), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.NotNil(t, cfg.Profile)
	assert.Equal(t, []string{"A", "B"}, cfg.Profile.Roster)
	require.Len(t, cfg.Profile.Rules, 1)
	assert.Equal(t, "stop", cfg.Profile.Rules[0].End)
}

func TestLoadRejectsTooFastTick(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".chamberlog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".chamberlog", "config.yaml"), []byte("tick_interval: 1ms\n"), 0o644))
	_, err := config.Load(dir)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	require.NoError(t, err)
	cfg.TickInterval = 2 * time.Second
	cfg.Logging.Level = "warn"
	require.NoError(t, config.Save(cfg))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, loaded.TickInterval)
	assert.Equal(t, "warn", loaded.Logging.Level)
}
