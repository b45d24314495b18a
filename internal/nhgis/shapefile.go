// Package nhgis loads NHGIS historical county boundary shapefiles into
// in-memory county polygon sets.
package nhgis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/geometry"
	"github.com/edu-demography/county-cli/internal/model"
)

// NHGIS attribute fields carried into the county model. ICPSRNAM is sometimes
// blank in the source files; NHGISNAM is the fallback.
const (
	fieldGISJoin    = "gisjoin"
	fieldICPSRState = "icpsrst"
	fieldICPSRCty   = "icpsrcty"
	fieldICPSRName  = "icpsrnam"
	fieldNHGISName  = "nhgisnam"
	fieldStateName  = "statenam"
)

// ShapefilePath returns the conventional path of an NHGIS county boundary
// shapefile for a census year under the given data directory.
func ShapefilePath(dir string, year int) string {
	return filepath.Join(dir,
		fmt.Sprintf("nhgis0004_shapefile_tl2000_us_county_%d", year),
		fmt.Sprintf("US_county_%d.shp", year),
	)
}

// LoadCounties reads one census year's county polygons from a shapefile and
// reprojects them from the file CRS into the working CRS. Records with
// missing identifier fields fail the whole load; records whose geometry
// cannot be converted are excluded and returned as warnings.
func LoadCounties(path string, year int, fileCRS, workCRS geometry.CRS) ([]model.CountyPolygon, []model.CountyWarning, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(model.ErrDataLoad, "nhgis: open shapefile %s: %v", path, err)
	}
	defer func() { _ = reader.Close() }()

	// Build field name -> index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	for _, required := range []string{fieldGISJoin, fieldICPSRState, fieldICPSRCty} {
		if _, ok := fieldIdx[required]; !ok {
			return nil, nil, eris.Wrapf(model.ErrDataLoad, "nhgis: %s: required field %q not present", path, required)
		}
	}

	attr := func(idx int) string {
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}
	optAttr := func(name string) string {
		idx, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		return attr(idx)
	}

	var (
		counties []model.CountyPolygon
		warnings []model.CountyWarning
		record   int
	)

	for reader.Next() {
		_, shape := reader.Shape()

		gisJoin := attr(fieldIdx[fieldGISJoin])
		stateCode := attr(fieldIdx[fieldICPSRState])
		countyCode := attr(fieldIdx[fieldICPSRCty])
		if gisJoin == "" || stateCode == "" || countyCode == "" {
			return nil, nil, eris.Wrapf(model.ErrDataLoad,
				"nhgis: %s: record %d missing identifiers (gisjoin=%q icpsrst=%q icpsrcty=%q)",
				path, record, gisJoin, stateCode, countyCode)
		}

		name := optAttr(fieldICPSRName)
		if name == "" {
			name = optAttr(fieldNHGISName)
		}

		mp := shapeToMultiPolygon(shape)
		if mp == nil {
			warnings = append(warnings, model.CountyWarning{
				Kind:    model.WarnGeometryRepairFailure,
				Year:    year,
				GISJoin: gisJoin,
				Name:    name,
				Reason:  "missing or unsupported shape",
			})
			record++
			continue
		}

		projected, err := geometry.Reproject(mp, fileCRS, workCRS)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "nhgis: %s: reproject record %d", path, record)
		}

		counties = append(counties, model.CountyPolygon{
			Year:       year,
			GISJoin:    gisJoin,
			StateCode:  stateCode,
			CountyCode: countyCode,
			Name:       name,
			StateName:  optAttr(fieldStateName),
			Geometry:   projected,
			Area:       geometry.Area(geometry.ToPolyclip(projected)),
		})
		record++
	}

	if len(counties) == 0 {
		return nil, nil, eris.Wrapf(model.ErrDataLoad, "nhgis: %s: no county polygons", path)
	}

	zap.L().Info("nhgis: counties loaded",
		zap.String("path", path),
		zap.Int("year", year),
		zap.Int("counties", len(counties)),
		zap.Int("skipped", len(warnings)),
	)
	return counties, warnings, nil
}
