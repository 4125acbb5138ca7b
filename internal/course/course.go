// Package course holds pre-processed course geometry and classifies points
// into terrain types.
package course

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

var (
	// ErrEmptyGeometry is returned when a course has no features at all
	ErrEmptyGeometry = errors.New("course geometry is empty")
	// ErrMalformedGeometry is returned for features that cannot be classified against
	ErrMalformedGeometry = errors.New("malformed course geometry")
)

// DefaultPriority ranks terrain types for overlap resolution; lower wins.
var DefaultPriority = map[core.TerrainType]int{
	core.TerrainGreen:       1,
	core.TerrainTee:         2,
	core.TerrainBunker:      3,
	core.TerrainHazard:      4,
	core.TerrainOutOfBounds: 5,
	core.TerrainFairway:     6,
	core.TerrainRough:       7,
}

// Feature is one labelled region as supplied by the course-data collaborator.
// Geometry must be a Polygon or MultiPolygon in the course CRS.
type Feature struct {
	Terrain  core.TerrainType
	Boundary bool // course boundary rather than a terrain region
	Priority int  // 0 means DefaultPriority for the terrain
	Geometry geom.Geometry
}

type region struct {
	terrain  core.TerrainType
	priority int
	polygon  geom.Polygon
	minX     float64
	minY     float64
	maxX     float64
	maxY     float64
}

func (r *region) contains(p geom.XY) bool {
	if p.X < r.minX || p.X > r.maxX || p.Y < r.minY || p.Y > r.maxY {
		return false
	}
	return geo.Contains(r.polygon, p)
}

// Course is an immutable, classification-ready set of regions in a planar frame.
// A course without boundary regions is unbounded: nothing is out of bounds unless
// an out_of_bounds region says so.
type Course struct {
	frame      geo.Frame
	boundaries []region
	regions    []region // sorted by priority
}

// New validates and pre-processes features. Multi-part regions are split into
// single polygons, every ring is projected into a frame anchored at the first vertex,
// and regions are sorted by priority.
func New(features []Feature, crs core.CRS) (*Course, error) {
	if len(features) == 0 {
		return nil, ErrEmptyGeometry
	}

	origin, err := firstVertex(features, crs)
	if err != nil {
		return nil, err
	}
	frame, err := geo.NewFrame(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}

	c := &Course{frame: frame}
	for i, f := range features {
		if !f.Boundary && f.Terrain == core.TerrainHole {
			return nil, fmt.Errorf("%w: feature %d: hole is not a course terrain", ErrMalformedGeometry, i)
		}
		polys, err := splitPolygons(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if f.Priority < 0 {
			return nil, fmt.Errorf("%w: feature %d: negative priority %d", ErrMalformedGeometry, i, f.Priority)
		}
		priority := f.Priority
		if priority == 0 {
			priority = DefaultPriority[f.Terrain]
		}
		for _, poly := range polys {
			projected, err := frame.ProjectPolygon(poly)
			if err != nil {
				return nil, fmt.Errorf("%w: feature %d: %v", ErrMalformedGeometry, i, err)
			}
			r := newRegion(f.Terrain, priority, projected)
			if f.Boundary {
				c.boundaries = append(c.boundaries, r)
			} else {
				c.regions = append(c.regions, r)
			}
		}
	}

	sort.SliceStable(c.regions, func(i, j int) bool {
		return c.regions[i].priority < c.regions[j].priority
	})

	return c, nil
}

// Frame returns the planar frame the course was projected into.
func (c *Course) Frame() geo.Frame {
	return c.frame
}

// Classify returns the terrain type at p, a point in the course frame.
func (c *Course) Classify(p geom.XY) core.TerrainType {
	inBounds := len(c.boundaries) == 0
	for i := range c.boundaries {
		if c.boundaries[i].contains(p) {
			inBounds = true
			break
		}
	}
	if !inBounds {
		return core.TerrainOutOfBounds
	}
	for i := range c.regions {
		if c.regions[i].contains(p) {
			return c.regions[i].terrain
		}
	}
	return core.TerrainRough
}

// ClassifyCoordinate projects and classifies a coordinate.
func (c *Course) ClassifyCoordinate(coord core.Coordinate) (core.TerrainType, error) {
	p, err := c.frame.Project(coord)
	if err != nil {
		return 0, err
	}
	return c.Classify(p), nil
}

// NumRegions returns the number of single-polygon terrain regions after splitting.
func (c *Course) NumRegions() int {
	return len(c.regions)
}

// Bounded reports whether the course has at least one boundary region.
func (c *Course) Bounded() bool {
	return len(c.boundaries) > 0
}

func newRegion(terrain core.TerrainType, priority int, poly geom.Polygon) region {
	r := region{
		terrain:  terrain,
		priority: priority,
		polygon:  poly,
		minX:     math.Inf(1),
		minY:     math.Inf(1),
		maxX:     math.Inf(-1),
		maxY:     math.Inf(-1),
	}
	seq := poly.ExteriorRing().Coordinates()
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		r.minX = math.Min(r.minX, xy.X)
		r.minY = math.Min(r.minY, xy.Y)
		r.maxX = math.Max(r.maxX, xy.X)
		r.maxY = math.Max(r.maxY, xy.Y)
	}
	return r
}

// splitPolygons flattens a Polygon or MultiPolygon into its parts.
func splitPolygons(g geom.Geometry) ([]geom.Polygon, error) {
	var polys []geom.Polygon
	switch g.Type() {
	case geom.TypePolygon:
		p, _ := g.AsPolygon()
		polys = append(polys, p)
	case geom.TypeMultiPolygon:
		mp, _ := g.AsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			polys = append(polys, mp.PolygonN(i))
		}
	default:
		return nil, fmt.Errorf("%w: unsupported geometry type %s", ErrMalformedGeometry, g.Type())
	}

	for i, p := range polys {
		if p.IsEmpty() || p.ExteriorRing().Coordinates().Length() < 4 {
			return nil, fmt.Errorf("%w: polygon %d has no usable exterior ring", ErrMalformedGeometry, i)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: polygon %d: %v", ErrMalformedGeometry, i, err)
		}
	}
	return polys, nil
}

func firstVertex(features []Feature, crs core.CRS) (core.Coordinate, error) {
	for _, f := range features {
		polys, err := splitPolygons(f.Geometry)
		if err != nil || len(polys) == 0 {
			continue
		}
		xy := polys[0].ExteriorRing().Coordinates().GetXY(0)
		return core.Coordinate{X: xy.X, Y: xy.Y, CRS: crs}, nil
	}
	return core.Coordinate{}, fmt.Errorf("%w: no feature has coordinates", ErrMalformedGeometry)
}
