// Package hexgrid tiles a region with regular flat-top hexagons sized to a target
// cell count.
package hexgrid

import (
	"math"

	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// hexAreaFactor is the area of a regular hexagon with unit side
var hexAreaFactor = 3 * math.Sqrt(3) / 2

// Limits bounds the hexagon side length in metres.
type Limits struct {
	MinSide float64
	MaxSide float64
}

// DefaultLimits keeps cells between 20 cm and 5 m across a side.
var DefaultLimits = Limits{MinSide: 0.2, MaxSide: 5}

// Region is anything a grid can be generated over.
type Region interface {
	Area() float64
	Bounds() (min, max geom.XY)
	Contains(p geom.XY) bool
}

// Disc is a circular region.
type Disc struct {
	Center geom.XY
	Radius float64
}

func (d Disc) Area() float64 {
	return math.Pi * d.Radius * d.Radius
}

func (d Disc) Bounds() (geom.XY, geom.XY) {
	return geom.XY{X: d.Center.X - d.Radius, Y: d.Center.Y - d.Radius},
		geom.XY{X: d.Center.X + d.Radius, Y: d.Center.Y + d.Radius}
}

func (d Disc) Contains(p geom.XY) bool {
	dx, dy := p.X-d.Center.X, p.Y-d.Center.Y
	return dx*dx+dy*dy <= d.Radius*d.Radius
}

// Polygon adapts a simplefeatures polygon to a Region.
type Polygon struct {
	Polygon geom.Polygon
}

func (p Polygon) Area() float64 {
	return p.Polygon.Area()
}

func (p Polygon) Bounds() (geom.XY, geom.XY) {
	min := geom.XY{X: math.Inf(1), Y: math.Inf(1)}
	max := geom.XY{X: math.Inf(-1), Y: math.Inf(-1)}
	seq := p.Polygon.ExteriorRing().Coordinates()
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		min.X, min.Y = math.Min(min.X, xy.X), math.Min(min.Y, xy.Y)
		max.X, max.Y = math.Max(max.X, xy.X), math.Max(max.Y, xy.Y)
	}
	return min, max
}

func (p Polygon) Contains(xy geom.XY) bool {
	return geo.Contains(p.Polygon, xy)
}

// SideLength returns the hex side that tiles area with about maxCells cells,
// clamped to limits. It returns 0 when no grid can be built.
func SideLength(area float64, maxCells int, limits Limits) float64 {
	if !(area > 0) || maxCells <= 0 || math.IsInf(area, 0) {
		return 0
	}
	s := math.Sqrt(area / (float64(maxCells) * hexAreaFactor))
	if limits.MinSide > 0 {
		s = math.Max(s, limits.MinSide)
	}
	if limits.MaxSide > 0 {
		s = math.Min(s, limits.MaxSide)
	}
	return s
}

// Generate tiles region with flat-top hexagons and keeps those whose centre lies
// inside it. Cells come back in column-major order with only Center and Side set.
// A degenerate region yields an empty slice.
func Generate(region Region, maxCells int, limits Limits) []core.Cell {
	s := SideLength(region.Area(), maxCells, limits)
	if s == 0 {
		return nil
	}

	min, max := region.Bounds()
	colStep := 1.5 * s
	rowStep := math.Sqrt(3) * s

	// anchor the lattice on the region's centre so symmetric regions tile symmetrically
	cx, cy := (min.X+max.X)/2, (min.Y+max.Y)/2
	firstCol := int(math.Floor((min.X - cx) / colStep))
	lastCol := int(math.Ceil((max.X - cx) / colStep))
	firstRow := int(math.Floor((min.Y-cy)/rowStep)) - 1
	lastRow := int(math.Ceil((max.Y-cy)/rowStep)) + 1

	cells := make([]core.Cell, 0, maxCells+maxCells/4)
	for col := firstCol; col <= lastCol; col++ {
		x := cx + float64(col)*colStep
		offset := 0.0
		if col%2 != 0 {
			offset = rowStep / 2
		}
		for row := firstRow; row <= lastRow; row++ {
			center := geom.XY{X: x, Y: cy + float64(row)*rowStep + offset}
			if !region.Contains(center) {
				continue
			}
			cells = append(cells, core.Cell{Center: center, Side: s})
		}
	}
	return cells
}
