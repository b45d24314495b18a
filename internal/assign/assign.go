// Package assign places geocoded point records inside historical county
// boundaries for a given census year.
package assign

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/dhconnelly/rtreego"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/geometry"
	"github.com/edu-demography/county-cli/internal/model"
)

// CollegeRecord is one row of the geocoded colleges input file.
type CollegeRecord struct {
	Name      string  `csv:"College_Name"`
	City      string  `csv:"City"`
	State     string  `csv:"State"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
}

// AssignedRecord is a college with its containing county, when one was found.
type AssignedRecord struct {
	CollegeRecord
	Matched         bool
	CountyGISJoin   string
	CountyStateCode string
	CountyCode      string
	CountyName      string
	CountyStateName string
}

// Result summarizes one assignment run.
type Result struct {
	Records   []AssignedRecord
	Matched   int
	Unmatched int
	Skipped   int // rows without coordinates
}

// ReadColleges loads the geocoded colleges CSV.
func ReadColleges(path string) ([]CollegeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(model.ErrDataLoad, "assign: read colleges file %s: %v", path, err)
	}
	var recs []CollegeRecord
	if err := csvutil.Unmarshal(data, &recs); err != nil {
		return nil, eris.Wrapf(model.ErrDataLoad, "assign: parse colleges file %s: %v", path, err)
	}
	if len(recs) == 0 {
		return nil, eris.Wrapf(model.ErrDataLoad, "assign: colleges file %s is empty", path)
	}
	return recs, nil
}

// countyShape pairs a county with its clipping-form geometry for point tests.
type countyShape struct {
	county model.CountyPolygon
	poly   polyclip.Polygon
	rect   rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (c *countyShape) Bounds() rtreego.Rect { return c.rect }

// Points assigns each college to the county containing its coordinates.
// College coordinates are lon/lat (WGS84) and are reprojected into the
// counties' working CRS before the containment test.
func Points(ctx context.Context, colleges []CollegeRecord, counties []model.CountyPolygon, countyCRS geometry.CRS) (*Result, error) {
	if len(counties) == 0 {
		return nil, eris.Wrap(model.ErrDataLoad, "assign: empty county set")
	}

	tree := rtreego.NewTree(2, 25, 50)
	for i := range counties {
		poly := geometry.ToPolyclip(counties[i].Geometry)
		if len(poly) == 0 {
			continue
		}
		minX, minY, maxX, maxY := geometry.BoundingBox(poly)
		rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{maxX - minX, maxY - minY})
		if err != nil {
			return nil, eris.Wrapf(err, "assign: index county %s", counties[i].GISJoin)
		}
		tree.Insert(&countyShape{county: counties[i], poly: poly, rect: rect})
	}

	res := &Result{Records: make([]AssignedRecord, 0, len(colleges))}
	for _, college := range colleges {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "assign")
		}

		rec := AssignedRecord{CollegeRecord: college}
		if college.Latitude == 0 && college.Longitude == 0 {
			res.Skipped++
			res.Records = append(res.Records, rec)
			continue
		}

		x, y, err := geometry.ProjectPoint(college.Longitude, college.Latitude, geometry.WGS84, countyCRS)
		if err != nil {
			return nil, eris.Wrapf(err, "assign: project point for %q", college.Name)
		}

		for _, hit := range tree.SearchIntersect(rtreego.Point{x, y}.ToRect(1e-6)) {
			cs := hit.(*countyShape)
			if geometry.PointInPolygon(cs.poly, x, y) {
				rec.Matched = true
				rec.CountyGISJoin = cs.county.GISJoin
				rec.CountyStateCode = cs.county.StateCode
				rec.CountyCode = cs.county.CountyCode
				rec.CountyName = cs.county.Name
				rec.CountyStateName = cs.county.StateName
				break
			}
		}

		if rec.Matched {
			res.Matched++
		} else {
			res.Unmatched++
		}
		res.Records = append(res.Records, rec)
	}

	zap.L().Info("college county assignment complete",
		zap.Int("matched", res.Matched),
		zap.Int("unmatched", res.Unmatched),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// assignedColumns defines the ordered output columns.
var assignedColumns = []string{
	"College_Name", "City", "State", "latitude", "longitude",
	"GISJOIN", "ICPSRST", "ICPSRCTY", "ICPSRNAM", "STATENAM",
}

// WriteAssigned writes the assignment results as CSV.
func WriteAssigned(records []AssignedRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "assign: create output file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(assignedColumns); err != nil {
		return eris.Wrap(err, "assign: write header")
	}
	for i := range records {
		r := &records[i]
		row := []string{
			r.Name, r.City, r.State,
			strconv.FormatFloat(r.Latitude, 'f', 6, 64),
			strconv.FormatFloat(r.Longitude, 'f', 6, 64),
			r.CountyGISJoin, r.CountyStateCode, r.CountyCode, r.CountyName, r.CountyStateName,
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "assign: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "assign: flush output")
}
