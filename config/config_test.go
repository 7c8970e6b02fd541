package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "processed_data", cfg.Table)
	assert.Equal(t, "output.csv", cfg.Output)
	assert.True(t, cfg.Recursive)
	assert.Equal(t, 10, cfg.MaxDepth)
	assert.Equal(t, 1000, cfg.MaxSamples)
	assert.Equal(t, 0.8, cfg.Tolerance)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
sourceDir: /data/in
table: events
tolerance: 0.5
workers: 8
recursive: false
logLevel: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.SourceDir)
	assert.Equal(t, "events", cfg.Table)
	assert.Equal(t, 0.5, cfg.Tolerance)
	assert.Equal(t, 8, cfg.Workers)
	assert.False(t, cfg.Recursive)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Keys the file omits keep their defaults.
	assert.Equal(t, 10, cfg.MaxDepth)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table: from_file\nworkers: 2\n"), 0o644))

	t.Setenv("SIEGE_INGEST_TABLE", "from_env")
	t.Setenv("SIEGE_INGEST_WORKERS", "6")
	t.Setenv("SIEGE_INGEST_RECURSIVE", "false")
	t.Setenv("SIEGE_INGEST_TOLERANCE", "0.9")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.Table)
	assert.Equal(t, 6, cfg.Workers)
	assert.False(t, cfg.Recursive)
	assert.Equal(t, 0.9, cfg.Tolerance)
}

func TestInvalidEnvValues(t *testing.T) {
	t.Setenv("SIEGE_INGEST_WORKERS", "lots")
	_, err := Load("")
	assert.Error(t, err)
}

func TestToleranceRangeEnforced(t *testing.T) {
	t.Setenv("SIEGE_INGEST_TOLERANCE", "1.5")
	_, err := Load("")
	assert.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
