// Package geometry provides planar geometry operations for county boundary
// work: explicit coordinate reference systems, polygon area, intersection,
// and validity repair.
package geometry

import (
	"math"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
)

// CRS identifies a coordinate reference system. CRS values are passed
// explicitly into every load and reproject call; there is no global
// "current CRS" state.
type CRS struct {
	Name string
}

var (
	// WGS84 is geographic longitude/latitude in degrees.
	WGS84 = CRS{Name: "EPSG:4326"}

	// AlbersConterminousUS is the USA Contiguous Albers Equal Area Conic
	// projection (meters). Equal-area, so polygon areas computed in it are
	// directly comparable, which is what overlap shares require.
	AlbersConterminousUS = CRS{Name: "ESRI:102003"}
)

// ParseCRS resolves a CRS by its authority name.
func ParseCRS(name string) (CRS, error) {
	switch name {
	case WGS84.Name:
		return WGS84, nil
	case AlbersConterminousUS.Name:
		return AlbersConterminousUS, nil
	default:
		return CRS{}, eris.Errorf("geometry: unknown CRS %q", name)
	}
}

// Albers parameters for the conterminous US (spherical form).
const (
	earthRadiusM  = 6378137.0
	albersStdPar1 = 29.5 * math.Pi / 180
	albersStdPar2 = 45.5 * math.Pi / 180
	albersLatOrig = 23.0 * math.Pi / 180
	albersLonOrig = -96.0 * math.Pi / 180
)

// Transform returns the forward coordinate transform from one CRS to another.
// Only identity and WGS84 → Albers are supported; NHGIS boundary files are
// distributed either way.
func Transform(from, to CRS) (func(x, y float64) (float64, float64), error) {
	switch {
	case from == to:
		return func(x, y float64) (float64, float64) { return x, y }, nil
	case from == WGS84 && to == AlbersConterminousUS:
		return albersForward, nil
	default:
		return nil, eris.Errorf("geometry: unsupported CRS transform %s -> %s", from.Name, to.Name)
	}
}

// albersForward projects a lon/lat degree pair to Albers x/y meters.
func albersForward(lon, lat float64) (float64, float64) {
	lambda := lon * math.Pi / 180
	phi := lat * math.Pi / 180

	n := (math.Sin(albersStdPar1) + math.Sin(albersStdPar2)) / 2
	c := math.Cos(albersStdPar1)*math.Cos(albersStdPar1) + 2*n*math.Sin(albersStdPar1)
	rho := earthRadiusM / n * math.Sqrt(c-2*n*math.Sin(phi))
	rho0 := earthRadiusM / n * math.Sqrt(c-2*n*math.Sin(albersLatOrig))
	theta := n * (lambda - albersLonOrig)

	x := rho * math.Sin(theta)
	y := rho0 - rho*math.Cos(theta)
	return x, y
}

// Reproject returns a copy of mp with every coordinate transformed from one
// CRS to another. The input geometry is not modified.
func Reproject(mp *geom.MultiPolygon, from, to CRS) (*geom.MultiPolygon, error) {
	tf, err := Transform(from, to)
	if err != nil {
		return nil, err
	}

	out := mp.Clone()
	flat := out.FlatCoords()
	stride := out.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		flat[i], flat[i+1] = tf(flat[i], flat[i+1])
	}
	return out, nil
}

// ProjectPoint transforms a single coordinate pair between CRSs.
func ProjectPoint(x, y float64, from, to CRS) (float64, float64, error) {
	tf, err := Transform(from, to)
	if err != nil {
		return 0, 0, err
	}
	px, py := tf(x, y)
	return px, py, nil
}
