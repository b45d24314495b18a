package crosswalk

import (
	polyclip "github.com/akavel/polyclip-go"
	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"

	"github.com/edu-demography/county-cli/internal/geometry"
	"github.com/edu-demography/county-cli/internal/model"
)

// minRectExtent pads degenerate bounding boxes so the R-tree accepts them.
const minRectExtent = 1e-9

// preparedCounty is a county whose geometry has been repaired and converted
// to clipping form.
type preparedCounty struct {
	county model.CountyPolygon
	poly   polyclip.Polygon
	area   float64
}

// targetItem is one target county in the spatial index. It carries only the
// index into the prepared slice; workers treat the index as read-only.
type targetItem struct {
	idx  int
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (t *targetItem) Bounds() rtreego.Rect { return t.rect }

// rectFor builds an R-tree rectangle from a polygon's bounding box.
func rectFor(poly polyclip.Polygon) (rtreego.Rect, error) {
	minX, minY, maxX, maxY := geometry.BoundingBox(poly)
	w := maxX - minX
	if w < minRectExtent {
		w = minRectExtent
	}
	h := maxY - minY
	if h < minRectExtent {
		h = minRectExtent
	}
	rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
	if err != nil {
		return rect, eris.Wrap(err, "crosswalk: build index rect")
	}
	return rect, nil
}

// buildIndex constructs an R-tree over the target counties' bounding boxes.
// The index is built once and only read afterwards, so concurrent worker
// queries need no locking.
func buildIndex(targets []preparedCounty) (*rtreego.Rtree, error) {
	tree := rtreego.NewTree(2, 25, 50)
	for i := range targets {
		rect, err := rectFor(targets[i].poly)
		if err != nil {
			return nil, err
		}
		tree.Insert(&targetItem{idx: i, rect: rect})
	}
	return tree, nil
}
