package geo

import (
	"fmt"
	"math"

	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Frame is a local planar metric frame anchored at an origin coordinate.
// Geographic frames accept 4326 and 3857 input; local frames accept only local input.
type Frame struct {
	crs     core.CRS // CRS results are unprojected into
	originX float64  // 3857 metres, or local metres
	originY float64
	scale   float64 // ground metres per projected metre
}

// NewFrame anchors a frame at origin. The origin's CRS becomes the frame's output CRS.
func NewFrame(origin core.Coordinate) (Frame, error) {
	if err := Validate(origin); err != nil {
		return Frame{}, err
	}
	switch origin.CRS {
	case core.CRSLocal:
		return Frame{crs: core.CRSLocal, originX: origin.X, originY: origin.Y, scale: 1}, nil
	case core.CRSWGS84:
		x, y, _ := to3857(origin.X, origin.Y, 0)
		return Frame{crs: origin.CRS, originX: x, originY: y, scale: math.Cos(origin.Y * math.Pi / 180)}, nil
	case core.CRSWebMercator:
		_, lat, _ := from3857(origin.X, origin.Y, 0)
		return Frame{crs: origin.CRS, originX: origin.X, originY: origin.Y, scale: math.Cos(lat * math.Pi / 180)}, nil
	}
	return Frame{}, fmt.Errorf("%w: %s", ErrUnsupportedCRS, origin.CRS)
}

// CRS returns the CRS coordinates are unprojected into.
func (f Frame) CRS() core.CRS {
	return f.crs
}

// Project converts c into frame metres.
func (f Frame) Project(c core.Coordinate) (geom.XY, error) {
	if err := Validate(c); err != nil {
		return geom.XY{}, err
	}
	if (c.CRS == core.CRSLocal) != (f.crs == core.CRSLocal) {
		return geom.XY{}, fmt.Errorf("%w: cannot mix %s input with a %s frame", ErrUnsupportedCRS, c.CRS, f.crs)
	}
	x, y := c.X, c.Y
	if c.CRS == core.CRSWGS84 {
		x, y, _ = to3857(c.X, c.Y, 0)
	}
	return geom.XY{X: (x - f.originX) * f.scale, Y: (y - f.originY) * f.scale}, nil
}

// Unproject converts frame metres back into the frame CRS.
func (f Frame) Unproject(p geom.XY) core.Coordinate {
	x := p.X/f.scale + f.originX
	y := p.Y/f.scale + f.originY
	if f.crs == core.CRSWGS84 {
		x, y, _ = from3857(x, y, 0)
	}
	return core.Coordinate{X: x, Y: y, CRS: f.crs}
}

// ProjectPolygon projects every ring of p, whose vertices are in the frame CRS.
func (f Frame) ProjectPolygon(p geom.Polygon) (geom.Polygon, error) {
	rings := make([]geom.LineString, 0, 1+p.NumInteriorRings())
	ext, err := f.projectRing(p.ExteriorRing())
	if err != nil {
		return geom.Polygon{}, err
	}
	rings = append(rings, ext)
	for i := 0; i < p.NumInteriorRings(); i++ {
		ring, err := f.projectRing(p.InteriorRingN(i))
		if err != nil {
			return geom.Polygon{}, err
		}
		rings = append(rings, ring)
	}
	return geom.NewPolygon(rings), nil
}

// UnprojectPolygon is the inverse of ProjectPolygon for a single-ring polygon.
func (f Frame) UnprojectPolygon(p geom.Polygon) geom.Polygon {
	seq := p.ExteriorRing().Coordinates()
	flat := make([]float64, 0, seq.Length()*2)
	for i := 0; i < seq.Length(); i++ {
		c := f.Unproject(seq.GetXY(i))
		flat = append(flat, c.X, c.Y)
	}
	return geom.NewPolygon([]geom.LineString{geom.NewLineString(geom.NewSequence(flat, geom.DimXY))})
}

func (f Frame) projectRing(ring geom.LineString) (geom.LineString, error) {
	seq := ring.Coordinates()
	flat := make([]float64, 0, seq.Length()*2)
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		p, err := f.Project(core.Coordinate{X: xy.X, Y: xy.Y, CRS: f.crs})
		if err != nil {
			return geom.LineString{}, fmt.Errorf("vertex %d: %w", i, err)
		}
		flat = append(flat, p.X, p.Y)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY)), nil
}
