package geometry

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
)

// AreaTolerance is the minimum area (in squared working-CRS units) at which
// an intersection piece is considered real rather than floating-point or
// topology noise.
const AreaTolerance = 1e-9

// ToPolyclip converts a go-geom MultiPolygon to a polyclip polygon. Every
// linear ring becomes one contour; outer/hole distinction is carried by ring
// orientation, which the signed-area sum in Area respects.
func ToPolyclip(mp *geom.MultiPolygon) polyclip.Polygon {
	var p polyclip.Polygon
	if mp == nil {
		return p
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			ring := poly.LinearRing(j)
			contour := make(polyclip.Contour, 0, ring.NumCoords())
			for k := 0; k < ring.NumCoords(); k++ {
				c := ring.Coord(k)
				contour = append(contour, polyclip.Point{X: c[0], Y: c[1]})
			}
			p = append(p, contour)
		}
	}
	return p
}

// signedArea computes the shoelace signed area of a single contour.
func signedArea(c polyclip.Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	var sum float64
	for i := range c {
		j := (i + 1) % len(c)
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return sum / 2
}

// Area computes the planar area of a polygon. Holes are assumed to wind
// opposite to their shells, so the absolute value of the signed-area sum is
// the enclosed area. Both county areas and intersection areas go through this
// one routine so overlap shares are computed from comparable quantities.
func Area(p polyclip.Polygon) float64 {
	var sum float64
	for _, c := range p {
		sum += signedArea(c)
	}
	return math.Abs(sum)
}

// IntersectionArea computes the area of the geometric intersection of two
// polygons.
func IntersectionArea(a, b polyclip.Polygon) float64 {
	res := a.Construct(polyclip.INTERSECTION, b)
	return Area(res)
}

// Repair normalizes a possibly invalid polygon by unioning it with itself,
// the clipping-library equivalent of a zero-width buffer: self-intersections
// are split into separate rings and duplicate edges collapse. Returns an
// error when nothing usable remains.
func Repair(p polyclip.Polygon) (polyclip.Polygon, error) {
	var cleaned polyclip.Polygon
	for _, c := range p {
		if len(c) >= 3 {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return nil, eris.New("geometry: no rings with 3+ points")
	}

	repaired := cleaned.Construct(polyclip.UNION, cleaned)
	if len(repaired) == 0 {
		return nil, eris.New("geometry: self-union produced empty polygon")
	}
	if Area(repaired) <= AreaTolerance {
		return nil, eris.New("geometry: degenerate polygon after repair")
	}
	return repaired, nil
}

// PointInPolygon reports whether the point (x, y) is inside the polygon using
// the even-odd rule across all contours, so holes are handled.
func PointInPolygon(p polyclip.Polygon, x, y float64) bool {
	inside := false
	for _, c := range p {
		for i := range c {
			j := (i + len(c) - 1) % len(c)
			yi, yj := c[i].Y, c[j].Y
			if (yi > y) == (yj > y) {
				continue
			}
			xi, xj := c[i].X, c[j].X
			if x < (xj-xi)*(y-yi)/(yj-yi)+xi {
				inside = !inside
			}
		}
	}
	return inside
}

// BoundingBox returns the axis-aligned bounding box of a polygon.
func BoundingBox(p polyclip.Polygon) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, c := range p {
		for _, pt := range c {
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	return minX, minY, maxX, maxY
}
