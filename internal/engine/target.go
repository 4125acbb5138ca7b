package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/internal/hexgrid"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"golang.org/x/sync/errgroup"
)

// field is the supergrid packed into parallel arrays sorted by x.
// Terrain and strokes remaining are resolved once per cell.
type field struct {
	xs, ys, sr []float64
}

func (e *Engine) newField(c Course, cells []core.Cell, pin geom.XY) (*field, error) {
	sort.Slice(cells, func(i, j int) bool { return cells[i].Center.X < cells[j].Center.X })

	f := &field{
		xs: make([]float64, len(cells)),
		ys: make([]float64, len(cells)),
		sr: make([]float64, len(cells)),
	}
	for i, cell := range cells {
		terrain := c.Classify(cell.Center)
		sr, err := e.models.StrokesRemaining(geo.Distance(cell.Center, pin), terrain)
		if err != nil {
			return nil, fmt.Errorf("supergrid cell %d: %w", i, err)
		}
		f.xs[i], f.ys[i], f.sr[i] = cell.Center.X, cell.Center.Y, sr
	}
	return f, nil
}

// strokesGained is the expected strokes gained when aiming at aim. Only supergrid
// cells within radius contribute and their normal weights are normalised over that
// subset, so the density's constant factor cancels.
func (f *field) strokesGained(aim geom.XY, radius, sigma, srStart, holeOut float64) (float64, error) {
	lo := sort.SearchFloat64s(f.xs, aim.X-radius)
	r2 := radius * radius
	k := 1 / (2 * sigma * sigma)

	var mass, acc float64
	for i := lo; i < len(f.xs) && f.xs[i] <= aim.X+radius; i++ {
		dx, dy := f.xs[i]-aim.X, f.ys[i]-aim.Y
		d2 := dx*dx + dy*dy
		if d2 > r2 {
			continue
		}
		w := math.Exp(-d2 * k)
		mass += w
		acc += w * (srStart - f.sr[i] - 1)
	}
	if !(mass > 0) {
		return 0, ErrNoProbabilityMass
	}
	return (1-holeOut)*acc/mass + holeOut*(srStart-1), nil
}

// Target evaluates candidate aim points around the shot's aim and reports each
// candidate's expected strokes gained relative to the current aim.
func (e *Engine) Target(c Course, in core.ShotContext) (*core.Grid, error) {
	began := time.Now()
	s, err := e.resolve(c, in)
	if err != nil {
		return nil, err
	}

	grid := s.grid(core.GridTarget)
	limits := e.cfg.limits()
	super := hexgrid.Generate(hexgrid.Disc{Center: s.aim, Radius: e.cfg.SuperGridRadius * s.sigma}, e.cfg.SuperGridCells, limits)
	candidates := hexgrid.Generate(hexgrid.Disc{Center: s.aim, Radius: e.cfg.CandidateRadius * s.sigma}, e.cfg.CandidateCells, limits)
	if len(super) == 0 || len(candidates) == 0 {
		e.logger.Info("target grid is empty", "sigma", s.sigma)
		return grid, nil
	}

	f, err := e.newField(c, super, s.pin)
	if err != nil {
		return nil, fmt.Errorf("building supergrid: %w", err)
	}

	subset := e.cfg.SubsetRadius * s.sigma
	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i := range candidates {
		g.Go(func() error {
			v, err := f.strokesGained(candidates[i].Center, subset, s.sigma, s.srStart, s.holeOut)
			if err != nil {
				return fmt.Errorf("candidate %d: %w", i, err)
			}
			candidates[i].TargetStrokesGained = v
			candidates[i].WeightedStrokesGained = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range candidates {
		cell := &candidates[i]
		cell.DistanceToAim = geo.Distance(cell.Center, s.aim)
		cell.DistanceToHole = geo.Distance(cell.Center, s.pin)
		cell.Terrain = c.Classify(cell.Center)
		sr, err := e.models.StrokesRemaining(cell.DistanceToHole, cell.Terrain)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		cell.StrokesRemaining = sr
		cell.StrokesGained = s.srStart - sr - 1
	}

	baseline := baselineValue(candidates, s.aim)
	best := 0
	for i := range candidates {
		candidates[i].RelativeStrokesGained = candidates[i].TargetStrokesGained - baseline
		if candidates[i].TargetStrokesGained > candidates[best].TargetStrokesGained {
			best = i
		}
	}

	grid.Cells = candidates
	grid.BaselineStrokesGained = baseline
	grid.WeightedStrokesGained = baseline
	grid.IdealStrokesGained = candidates[best].TargetStrokesGained
	grid.RelativeStrokesGained = grid.IdealStrokesGained - baseline
	grid.BestCell = best

	elapsed := time.Since(began)
	e.metrics.record(core.GridTarget, len(candidates), elapsed)
	e.logger.Debug("target grid evaluated",
		"candidates", len(candidates),
		"supergrid", len(super),
		"sigma", s.sigma,
		"baseline", baseline,
		"ideal", grid.IdealStrokesGained,
		"elapsed", elapsed)
	return grid, nil
}

// baselineValue averages the candidates whose hexagon contains aim, falling back
// to the nearest candidate.
func baselineValue(candidates []core.Cell, aim geom.XY) float64 {
	var sum float64
	var n int
	nearest, nearestDist := 0, math.Inf(1)
	for i, cell := range candidates {
		d := geo.Distance(cell.Center, aim)
		if d < nearestDist {
			nearest, nearestDist = i, d
		}
		if d <= cell.Side && geo.Contains(geo.Hexagon(cell.Center, cell.Side), aim) {
			sum += cell.TargetStrokesGained
			n++
		}
	}
	if n == 0 {
		return candidates[nearest].TargetStrokesGained
	}
	return sum / float64(n)
}
