package assign

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	geom "github.com/twpayne/go-geom"

	"github.com/edu-demography/county-cli/internal/geometry"
	"github.com/edu-demography/county-cli/internal/model"
)

func squareCounty(gisjoin, state, county, name string, minX, minY, size float64) model.CountyPolygon {
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{minX, minY},
		{minX + size, minY},
		{minX + size, minY + size},
		{minX, minY + size},
		{minX, minY},
	}}})
	return model.CountyPolygon{
		Year:       1940,
		GISJoin:    gisjoin,
		StateCode:  state,
		CountyCode: county,
		Name:       name,
		StateName:  "Testland",
		Geometry:   mp,
	}
}

func TestReadColleges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colleges.csv")
	data := strings.Join([]string{
		"College_Name,City,State,latitude,longitude",
		"Alpha College,Springfield,IL,39.8,-89.65",
		"Beta Institute,Columbus,OH,0,0",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	recs, err := ReadColleges(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Alpha College", recs[0].Name)
	assert.Equal(t, "IL", recs[0].State)
	assert.InDelta(t, 39.8, recs[0].Latitude, 1e-9)
	assert.InDelta(t, -89.65, recs[0].Longitude, 1e-9)
}

func TestReadCollegesMissing(t *testing.T) {
	_, err := ReadColleges(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrDataLoad))
}

func TestReadCollegesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("College_Name,City,State,latitude,longitude\n"), 0o644))

	_, err := ReadColleges(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrDataLoad))
}

func TestPoints(t *testing.T) {
	// Counties kept in lon/lat so the point transform is the identity.
	counties := []model.CountyPolygon{
		squareCounty("G0100010", "41", "0010", "Autauga", -90, 39, 1),
		squareCounty("G0100030", "41", "0030", "Baldwin", -89, 39, 1),
	}
	colleges := []CollegeRecord{
		{Name: "Alpha College", City: "Springfield", State: "IL", Latitude: 39.5, Longitude: -89.5},
		{Name: "Beta Institute", City: "Columbus", State: "OH", Latitude: 39.5, Longitude: -88.5},
		{Name: "Offshore U", City: "Atlantis", State: "XX", Latitude: 10, Longitude: 10},
		{Name: "No Coords", City: "Nowhere", State: "ZZ"},
	}

	res, err := Points(context.Background(), colleges, counties, geometry.WGS84)
	require.NoError(t, err)
	require.Len(t, res.Records, 4)

	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, 1, res.Unmatched)
	assert.Equal(t, 1, res.Skipped)

	assert.True(t, res.Records[0].Matched)
	assert.Equal(t, "G0100010", res.Records[0].CountyGISJoin)
	assert.Equal(t, "Autauga", res.Records[0].CountyName)

	assert.True(t, res.Records[1].Matched)
	assert.Equal(t, "G0100030", res.Records[1].CountyGISJoin)

	assert.False(t, res.Records[2].Matched)
	assert.False(t, res.Records[3].Matched)
}

func TestPointsEmptyCounties(t *testing.T) {
	_, err := Points(context.Background(), nil, nil, geometry.WGS84)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrDataLoad))
}

func TestWriteAssigned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	records := []AssignedRecord{
		{
			CollegeRecord:   CollegeRecord{Name: "Alpha College", City: "Springfield", State: "IL", Latitude: 39.5, Longitude: -89.5},
			Matched:         true,
			CountyGISJoin:   "G0100010",
			CountyStateCode: "41",
			CountyCode:      "0010",
			CountyName:      "Autauga",
			CountyStateName: "Alabama",
		},
	}

	require.NoError(t, WriteAssigned(records, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(assignedColumns, ","), lines[0])
	assert.Contains(t, lines[1], "Alpha College")
	assert.Contains(t, lines[1], "G0100010")
	assert.Contains(t, lines[1], "39.500000")
}
