package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	geom "github.com/twpayne/go-geom"
)

func TestParseCRS(t *testing.T) {
	c, err := ParseCRS("EPSG:4326")
	require.NoError(t, err)
	assert.Equal(t, WGS84, c)

	c, err = ParseCRS("ESRI:102003")
	require.NoError(t, err)
	assert.Equal(t, AlbersConterminousUS, c)

	_, err = ParseCRS("EPSG:3857")
	assert.Error(t, err)
}

func TestTransformIdentity(t *testing.T) {
	tf, err := Transform(WGS84, WGS84)
	require.NoError(t, err)
	x, y := tf(-96.0, 38.5)
	assert.Equal(t, -96.0, x)
	assert.Equal(t, 38.5, y)
}

func TestTransformUnsupported(t *testing.T) {
	_, err := Transform(AlbersConterminousUS, WGS84)
	assert.Error(t, err)
}

func TestAlbersForwardOrigin(t *testing.T) {
	// The central meridian projects to x = 0, and points north of the
	// latitude of origin land at positive y.
	tf, err := Transform(WGS84, AlbersConterminousUS)
	require.NoError(t, err)

	x, y := tf(-96.0, 23.0)
	assert.InDelta(t, 0.0, x, 1e-6)
	assert.InDelta(t, 0.0, y, 1e-6)

	_, yn := tf(-96.0, 40.0)
	assert.Greater(t, yn, 0.0)

	xe, _ := tf(-80.0, 40.0)
	xw, _ := tf(-110.0, 40.0)
	assert.Greater(t, xe, 0.0)
	assert.Less(t, xw, 0.0)
}

func TestAlbersForwardScale(t *testing.T) {
	// One degree of latitude near the standard parallels is roughly 111 km
	// on the sphere; the projection should be within a few percent.
	x1, y1 := albersForward(-96.0, 38.0)
	x2, y2 := albersForward(-96.0, 39.0)
	d := math.Hypot(x2-x1, y2-y1)
	assert.InDelta(t, 111000, d, 5000)
}

func TestReproject(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{-96.5, 38.0},
		{-96.0, 38.0},
		{-96.0, 38.5},
		{-96.5, 38.5},
		{-96.5, 38.0},
	}}})

	out, err := Reproject(mp, WGS84, AlbersConterminousUS)
	require.NoError(t, err)

	// Input untouched.
	assert.Equal(t, -96.5, mp.FlatCoords()[0])

	// Output coordinates are projected meters, far outside degree range.
	flat := out.FlatCoords()
	assert.Greater(t, math.Abs(flat[0])+math.Abs(flat[1]), 1000.0)
}

func TestProjectPoint(t *testing.T) {
	x, y, err := ProjectPoint(-96.0, 23.0, WGS84, AlbersConterminousUS)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, x, 1e-6)
	assert.InDelta(t, 0.0, y, 1e-6)

	_, _, err = ProjectPoint(0, 0, AlbersConterminousUS, WGS84)
	assert.Error(t, err)
}
