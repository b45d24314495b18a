package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no config file is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/county_shape_files", cfg.Data.ShapefileDir)
	assert.Equal(t, "ESRI:102003", cfg.Data.FileCRS)
	assert.Equal(t, 70.0, cfg.Crosswalk.OverlapThreshold)
	assert.Equal(t, "", cfg.Store.Driver)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocode.BaseURL)
	assert.Equal(t, 1.0, cfg.Geocode.RequestsPerSec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `data:
  shapefile_dir: /data/nhgis
  output_dir: /data/out
crosswalk:
  overlap_threshold: 55.5
  workers: 8
store:
  driver: sqlite
  database_url: /tmp/runs.db
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/nhgis", cfg.Data.ShapefileDir)
	assert.Equal(t, "/data/out", cfg.Data.OutputDir)
	assert.Equal(t, 55.5, cfg.Crosswalk.OverlapThreshold)
	assert.Equal(t, 8, cfg.Crosswalk.Workers)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Defaults still fill unset sections.
	assert.Equal(t, "ESRI:102003", cfg.Data.FileCRS)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COUNTYCLI_DATA_SHAPEFILE_DIR", "/env/shapes")
	t.Setenv("COUNTYCLI_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/env/shapes", cfg.Data.ShapefileDir)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
