package engine

import (
	"fmt"

	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Classifier resolves the terrain at a point of the course frame.
type Classifier interface {
	Classify(p geom.XY) core.TerrainType
}

// Models provides strokes-remaining and hole-out regressions.
type Models interface {
	StrokesRemaining(distance float64, terrain core.TerrainType) (float64, error)
	HoleOutRate(distance float64, terrain core.TerrainType) (float64, error)
}

// EvaluateStrokesGained classifies every cell without a preset strokes remaining,
// looks up its strokes remaining to pin, and sets StrokesGained and
// WeightedStrokesGained. It returns the probability-weighted total.
func EvaluateStrokesGained(cells []core.Cell, pin geom.XY, srStart float64, classifier Classifier, models Models) (float64, error) {
	total := 0.0
	for i := range cells {
		c := &cells[i]
		c.DistanceToHole = geo.Distance(c.Center, pin)
		if !c.Preset {
			c.Terrain = classifier.Classify(c.Center)
			sr, err := models.StrokesRemaining(c.DistanceToHole, c.Terrain)
			if err != nil {
				return 0, fmt.Errorf("cell %d: %w", i, err)
			}
			c.StrokesRemaining = sr
		}
		c.StrokesGained = srStart - c.StrokesRemaining - 1
		c.WeightedStrokesGained = c.StrokesGained * c.Probability
		total += c.WeightedStrokesGained
	}
	return total, nil
}
