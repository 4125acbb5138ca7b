// pkg/core/grid.go
package core

import "github.com/peterstace/simplefeatures/geom"

// GridKind distinguishes outcome grids from target-optimization grids
type GridKind string

const (
	GridOutcome GridKind = "outcome"
	GridTarget  GridKind = "target"
)

// Cell is one hexagonal grid cell (or the synthetic hole disc).
// Center is expressed in the planar frame of the course the grid was built on.
type Cell struct {
	Center geom.XY
	Side   float64 // hex side length, or disc radius for the hole cell

	DistanceToAim         float64
	DistanceToHole        float64
	Terrain               TerrainType
	Probability           float64
	StrokesRemaining      float64
	Preset                bool // StrokesRemaining was fixed before evaluation
	StrokesGained         float64
	WeightedStrokesGained float64

	// target grids only
	TargetStrokesGained   float64
	RelativeStrokesGained float64
}

// IsHole reports whether c is the synthetic hole-out cell.
func (c Cell) IsHole() bool {
	return c.Terrain == TerrainHole
}

// Grid is the result of one evaluation.
type Grid struct {
	Kind  GridKind
	Cells []Cell

	WeightedStrokesGained float64
	StrokesRemainingStart float64
	DistanceToHole        float64
	Dispersion            float64
	StartTerrain          TerrainType
	HoleOutRate           float64

	// target grids only
	IdealStrokesGained    float64
	BaselineStrokesGained float64
	RelativeStrokesGained float64
	BestCell              int // index into Cells, -1 when empty
}

// Empty reports whether the grid has no cells, i.e. no recommendation is available.
func (g *Grid) Empty() bool {
	return g == nil || len(g.Cells) == 0
}
