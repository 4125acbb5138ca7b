// Package export renders evaluated grids as GeoJSON in the course's own CRS.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fairwaylabs/sgrid/internal/engine"
	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// holeSegments is the polygon resolution of the exported hole disc
const holeSegments = 24

// Summary carries the grid-level values of an evaluation.
type Summary struct {
	Kind                  core.GridKind    `json:"kind"`
	Cells                 int              `json:"cells"`
	WeightedStrokesGained float64          `json:"weightedStrokesGained"`
	StrokesRemainingStart float64          `json:"strokesRemainingStart"`
	DistanceToHole        float64          `json:"distanceToHole"`
	Dispersion            float64          `json:"dispersion"`
	StartTerrain          core.TerrainType `json:"startTerrain"`
	HoleOutRate           float64          `json:"holeOutRate"`

	IdealStrokesGained    *float64         `json:"idealStrokesGained,omitempty"`
	BaselineStrokesGained *float64         `json:"baselineStrokesGained,omitempty"`
	RelativeStrokesGained *float64         `json:"relativeStrokesGained,omitempty"`
	BestAim               *core.Coordinate `json:"bestAim,omitempty"`
}

// Document is a GeoJSON FeatureCollection with an extra summary member.
type Document struct {
	Type     string                `json:"type"`
	Features []geom.GeoJSONFeature `json:"features"`
	Summary  Summary               `json:"summary"`
}

// NewSummary extracts the grid-level values, unprojecting the best aim point.
func NewSummary(grid *core.Grid, frame geo.Frame) Summary {
	s := Summary{
		Kind:                  grid.Kind,
		Cells:                 len(grid.Cells),
		WeightedStrokesGained: grid.WeightedStrokesGained,
		StrokesRemainingStart: grid.StrokesRemainingStart,
		DistanceToHole:        grid.DistanceToHole,
		Dispersion:            grid.Dispersion,
		StartTerrain:          grid.StartTerrain,
		HoleOutRate:           grid.HoleOutRate,
	}
	if grid.Kind == core.GridTarget && !grid.Empty() {
		ideal, baseline, relative := grid.IdealStrokesGained, grid.BaselineStrokesGained, grid.RelativeStrokesGained
		s.IdealStrokesGained = &ideal
		s.BaselineStrokesGained = &baseline
		s.RelativeStrokesGained = &relative
		if grid.BestCell >= 0 && grid.BestCell < len(grid.Cells) {
			best := frame.Unproject(grid.Cells[grid.BestCell].Center)
			s.BestAim = &best
		}
	}
	return s
}

// Features returns one polygon feature per cell, in the frame's CRS.
func Features(grid *core.Grid, frame geo.Frame) []geom.GeoJSONFeature {
	features := make([]geom.GeoJSONFeature, 0, len(grid.Cells))
	for i, cell := range grid.Cells {
		var shape geom.Polygon
		if cell.IsHole() {
			shape = geo.Disc(cell.Center, cell.Side, holeSegments)
		} else {
			shape = geo.Hexagon(cell.Center, cell.Side)
		}
		features = append(features, geom.GeoJSONFeature{
			Geometry:   frame.UnprojectPolygon(shape).AsGeometry(),
			ID:         i,
			Properties: properties(grid, cell),
		})
	}
	return features
}

func properties(grid *core.Grid, cell core.Cell) map[string]interface{} {
	props := map[string]interface{}{
		"terrainType":           cell.Terrain.String(),
		"distanceToAim":         cell.DistanceToAim,
		"distanceToHole":        cell.DistanceToHole,
		"strokesRemaining":      cell.StrokesRemaining,
		"strokesGained":         cell.StrokesGained,
		"weightedStrokesGained": cell.WeightedStrokesGained,
	}
	switch grid.Kind {
	case core.GridOutcome:
		props["probability"] = cell.Probability
		if !cell.IsHole() {
			props["percentile"] = engine.Percentile(cell.DistanceToAim, grid.Dispersion)
		}
	case core.GridTarget:
		props["targetStrokesGained"] = cell.TargetStrokesGained
		props["relativeStrokesGained"] = cell.RelativeStrokesGained
	}
	return props
}

// Build assembles the full export document.
func Build(grid *core.Grid, frame geo.Frame) Document {
	return Document{
		Type:     "FeatureCollection",
		Features: Features(grid, frame),
		Summary:  NewSummary(grid, frame),
	}
}

// Write encodes the export document for grid to w.
func Write(w io.Writer, grid *core.Grid, frame geo.Frame) error {
	if err := json.NewEncoder(w).Encode(Build(grid, frame)); err != nil {
		return fmt.Errorf("encoding grid: %w", err)
	}
	return nil
}
