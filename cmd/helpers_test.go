package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/config"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()

	cfg = &config.Config{}
	s, err := openStore(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	cfg = &config.Config{Store: config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "runs.db"),
	}}
	s, err = openStore(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NoError(t, s.Close())

	cfg = &config.Config{Store: config.StoreConfig{Driver: "mssql"}}
	_, err = openStore(ctx)
	assert.Error(t, err)
}

func TestLoadCountyYearBadCRS(t *testing.T) {
	cfg = &config.Config{Data: config.DataConfig{FileCRS: "EPSG:0000"}}
	_, _, err := loadCountyYear(1900)
	assert.Error(t, err)
}

func TestLoadCountyYearMissingFile(t *testing.T) {
	cfg = &config.Config{Data: config.DataConfig{
		FileCRS:      "ESRI:102003",
		ShapefileDir: t.TempDir(),
	}}
	_, _, err := loadCountyYear(1900)
	assert.Error(t, err)
}
