package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoProbabilityMass is returned when every cell has zero landing density
var ErrNoProbabilityMass = errors.New("grid carries no probability mass")

// ApplyProbabilities sets DistanceToAim and a landing probability on every cell from
// a radially symmetric normal centred on aim. Raw densities are computed for the
// whole grid first and then normalised to sum to 1.
func ApplyProbabilities(cells []core.Cell, aim geom.XY, sigma float64) error {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return fmt.Errorf("%w: sigma %v", ErrInvalidDispersion, sigma)
	}
	if len(cells) == 0 {
		return nil
	}

	normal := distuv.Normal{Mu: 0, Sigma: sigma}
	raw := make([]float64, len(cells))
	for i := range cells {
		d := geo.Distance(cells[i].Center, aim)
		cells[i].DistanceToAim = d
		raw[i] = normal.Prob(d)
	}

	total := floats.Sum(raw)
	if !(total > 0) {
		return ErrNoProbabilityMass
	}
	floats.Scale(1/total, raw)
	for i := range cells {
		cells[i].Probability = raw[i]
	}
	return nil
}

// BlendHoleOut reallocates holeOut of the probability mass to a synthetic hole cell
// at pin. Every existing cell is scaled by (1 - holeOut), including cells that
// overlap the hole disc. The hole cell has a preset strokes remaining of 0.
func BlendHoleOut(cells []core.Cell, holeOut float64, pin, aim geom.XY, radius float64) []core.Cell {
	if holeOut <= 0 {
		return cells
	}
	for i := range cells {
		cells[i].Probability *= 1 - holeOut
	}
	return append(cells, core.Cell{
		Center:           pin,
		Side:             radius,
		DistanceToAim:    geo.Distance(pin, aim),
		Terrain:          core.TerrainHole,
		Probability:      holeOut,
		StrokesRemaining: 0,
		Preset:           true,
	})
}

// Percentile is the share of shots expected to finish within distanceToAim of the
// aim point under the same normal model.
func Percentile(distanceToAim, sigma float64) float64 {
	if !(sigma > 0) {
		return 1
	}
	return math.Erf(distanceToAim / (sigma * math.Sqrt2))
}
