package regression

import "github.com/fairwaylabs/sgrid/pkg/core"

// MaxDistance is the upper end of every built-in curve, in metres.
const MaxDistance = 1000.0

// Built-in curves, distances in metres. Past the fitted range each strokes-remaining
// curve continues linearly from its last fitted value; hole-out curves fall to zero
// past chipping range.
var defaultStrokesRemaining = map[core.TerrainType]Curve{
	core.TerrainGreen: {
		{Lo: 0, Hi: 40, Coefficients: []float64{1.0, 0.11, -0.0037, 0.00005}},
		{Lo: 40, Hi: MaxDistance, Coefficients: []float64{2.6, 0.002}},
	},
	core.TerrainFairway: {
		{Lo: 0, Hi: 600, Coefficients: []float64{2.2, 0.0065, -0.0000055}},
		{Lo: 600, Hi: MaxDistance, Coefficients: []float64{2.92, 0.002}},
	},
	core.TerrainTee: {
		{Lo: 0, Hi: 600, Coefficients: []float64{2.05, 0.0068, -0.0000058}},
		{Lo: 600, Hi: MaxDistance, Coefficients: []float64{2.842, 0.002}},
	},
	core.TerrainRough: {
		{Lo: 0, Hi: 600, Coefficients: []float64{2.45, 0.0065, -0.0000052}},
		{Lo: 600, Hi: MaxDistance, Coefficients: []float64{3.278, 0.002}},
	},
	core.TerrainBunker: {
		{Lo: 0, Hi: 600, Coefficients: []float64{2.5, 0.0062, -0.0000045}},
		{Lo: 600, Hi: MaxDistance, Coefficients: []float64{3.4, 0.002}},
	},
	core.TerrainHazard: {
		{Lo: 0, Hi: 600, Coefficients: []float64{3.3, 0.0065, -0.0000055}},
		{Lo: 600, Hi: MaxDistance, Coefficients: []float64{4.02, 0.002}},
	},
	core.TerrainOutOfBounds: {
		{Lo: 0, Hi: 600, Coefficients: []float64{3.6, 0.0065, -0.0000055}},
		{Lo: 600, Hi: MaxDistance, Coefficients: []float64{4.32, 0.002}},
	},
}

var defaultHoleOut = map[core.TerrainType]Curve{
	core.TerrainGreen: {
		{Lo: 0, Hi: 2, Coefficients: []float64{1.0, -0.25}},
		{Lo: 2, Hi: 10, Coefficients: []float64{0.753125, -0.140625, 0.00703125}},
		{Lo: 10, Hi: 47.5, Coefficients: []float64{0.063333, -0.0013333}},
		{Lo: 47.5, Hi: MaxDistance, Coefficients: []float64{0}},
	},
	core.TerrainFairway: {
		{Lo: 0, Hi: 250, Coefficients: []float64{0.05, -0.0004, 0.0000008}},
		{Lo: 250, Hi: MaxDistance, Coefficients: []float64{0}},
	},
	core.TerrainTee: {
		{Lo: 0, Hi: 250, Coefficients: []float64{0.0003}},
		{Lo: 250, Hi: MaxDistance, Coefficients: []float64{0}},
	},
	core.TerrainRough: {
		{Lo: 0, Hi: 250, Coefficients: []float64{0.03, -0.00024, 0.00000048}},
		{Lo: 250, Hi: MaxDistance, Coefficients: []float64{0}},
	},
	core.TerrainBunker: {
		{Lo: 0, Hi: 250, Coefficients: []float64{0.04, -0.00032, 0.00000064}},
		{Lo: 250, Hi: MaxDistance, Coefficients: []float64{0}},
	},
	core.TerrainHazard: {
		{Lo: 0, Hi: MaxDistance, Coefficients: []float64{0}},
	},
	core.TerrainOutOfBounds: {
		{Lo: 0, Hi: MaxDistance, Coefficients: []float64{0}},
	},
}

// Default returns a fresh copy of the built-in coefficient table.
func Default() *Table {
	return &Table{
		StrokesRemainingCurves: copyCurves(defaultStrokesRemaining),
		HoleOutCurves:          copyCurves(defaultHoleOut),
	}
}

func copyCurves(src map[core.TerrainType]Curve) map[core.TerrainType]Curve {
	dst := make(map[core.TerrainType]Curve, len(src))
	for terrain, curve := range src {
		c := make(Curve, len(curve))
		for i, s := range curve {
			c[i] = Segment{Lo: s.Lo, Hi: s.Hi, Coefficients: append([]float64(nil), s.Coefficients...)}
		}
		dst[terrain] = c
	}
	return dst
}
