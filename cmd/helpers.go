package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/edu-demography/county-cli/internal/geometry"
	"github.com/edu-demography/county-cli/internal/model"
	"github.com/edu-demography/county-cli/internal/nhgis"
	"github.com/edu-demography/county-cli/internal/store"
)

// loadCountyYear loads one census year's county polygons from the configured
// shapefile directory, reprojected into the Albers working CRS.
func loadCountyYear(year int) ([]model.CountyPolygon, []model.CountyWarning, error) {
	fileCRS, err := geometry.ParseCRS(cfg.Data.FileCRS)
	if err != nil {
		return nil, nil, err
	}
	path := nhgis.ShapefilePath(cfg.Data.ShapefileDir, year)
	return nhgis.LoadCounties(path, year, fileCRS, geometry.AlbersConterminousUS)
}

// openStore opens the configured run-history store, or returns nil when no
// store driver is configured.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "":
		return nil, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
