// Package regression evaluates the piecewise-polynomial strokes-remaining and
// hole-out models, one curve family per terrain type.
package regression

import (
	"errors"
	"fmt"
	"math"

	"github.com/fairwaylabs/sgrid/pkg/core"
)

var (
	// ErrNoModel is returned when a terrain type has no registered curve
	ErrNoModel = errors.New("no regression model for terrain")
	// ErrOutOfDomain is returned when a distance falls outside every segment
	ErrOutOfDomain = errors.New("distance outside regression domain")
	// ErrInvalidTable is returned by Validate for unusable coefficient tables
	ErrInvalidTable = errors.New("invalid regression table")
)

// Output clamps
const (
	MinStrokesRemaining = -7.0
	MaxStrokesRemaining = 7.0
)

// Segment is a polynomial valid on the closed distance interval [Lo, Hi].
// Coefficients are in ascending power order: c0 + c1*d + c2*d^2 + ...
type Segment struct {
	Lo           float64   `json:"lo" mapstructure:"lo"`
	Hi           float64   `json:"hi" mapstructure:"hi"`
	Coefficients []float64 `json:"coefficients" mapstructure:"coefficients"`
}

// Contains reports whether d lies in the segment domain.
func (s Segment) Contains(d float64) bool {
	return d >= s.Lo && d <= s.Hi
}

// Eval evaluates the polynomial at d with Horner's rule.
func (s Segment) Eval(d float64) float64 {
	v := 0.0
	for i := len(s.Coefficients) - 1; i >= 0; i-- {
		v = v*d + s.Coefficients[i]
	}
	return v
}

// Curve is an ordered list of segments; the first containing segment wins.
type Curve []Segment

// Eval evaluates the curve at d.
func (c Curve) Eval(d float64) (float64, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: %v", ErrOutOfDomain, d)
	}
	for _, s := range c {
		if s.Contains(d) {
			return s.Eval(d), nil
		}
	}
	return 0, fmt.Errorf("%w: %.2f", ErrOutOfDomain, d)
}

// Table maps terrain types to their strokes-remaining and hole-out curves.
// A Table is read-only once built and safe for concurrent use.
type Table struct {
	StrokesRemainingCurves map[core.TerrainType]Curve
	HoleOutCurves          map[core.TerrainType]Curve
}

// StrokesRemaining returns the expected strokes to finish from distance metres on
// terrain, clamped to [MinStrokesRemaining, MaxStrokesRemaining].
func (t *Table) StrokesRemaining(distance float64, terrain core.TerrainType) (float64, error) {
	curve, ok := t.StrokesRemainingCurves[terrain]
	if !ok {
		return 0, fmt.Errorf("%w: strokes remaining from %s", ErrNoModel, terrain)
	}
	v, err := curve.Eval(distance)
	if err != nil {
		return 0, fmt.Errorf("strokes remaining from %s: %w", terrain, err)
	}
	return clamp(v, MinStrokesRemaining, MaxStrokesRemaining), nil
}

// HoleOutRate returns the probability of holing out in one stroke, clamped to [0, 1].
func (t *Table) HoleOutRate(distance float64, terrain core.TerrainType) (float64, error) {
	curve, ok := t.HoleOutCurves[terrain]
	if !ok {
		return 0, fmt.Errorf("%w: hole-out rate from %s", ErrNoModel, terrain)
	}
	v, err := curve.Eval(distance)
	if err != nil {
		return 0, fmt.Errorf("hole-out rate from %s: %w", terrain, err)
	}
	return clamp(v, 0, 1), nil
}

// Validate checks every segment has coefficients and an ordered, finite domain.
func (t *Table) Validate() error {
	if len(t.StrokesRemainingCurves) == 0 {
		return fmt.Errorf("%w: no strokes remaining curves", ErrInvalidTable)
	}
	check := func(kind string, curves map[core.TerrainType]Curve) error {
		for terrain, curve := range curves {
			if terrain == core.TerrainHole {
				return fmt.Errorf("%w: %s curve for hole terrain", ErrInvalidTable, kind)
			}
			if len(curve) == 0 {
				return fmt.Errorf("%w: %s curve for %s has no segments", ErrInvalidTable, kind, terrain)
			}
			for i, s := range curve {
				if len(s.Coefficients) == 0 {
					return fmt.Errorf("%w: %s %s segment %d has no coefficients", ErrInvalidTable, kind, terrain, i)
				}
				if math.IsNaN(s.Lo) || math.IsNaN(s.Hi) || s.Lo > s.Hi {
					return fmt.Errorf("%w: %s %s segment %d domain [%v, %v]", ErrInvalidTable, kind, terrain, i, s.Lo, s.Hi)
				}
			}
		}
		return nil
	}
	if err := check("strokes remaining", t.StrokesRemainingCurves); err != nil {
		return err
	}
	return check("hole-out", t.HoleOutCurves)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
