package regression

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fairwaylabs/sgrid/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_EvalHorner(t *testing.T) {
	s := Segment{Lo: 0, Hi: 10, Coefficients: []float64{1, 2, 3}}

	assert.InDelta(t, 1+2*2+3*4, s.Eval(2), 1e-12)
	assert.InDelta(t, 1.0, s.Eval(0), 1e-12)
}

func TestCurve_FirstContainingSegmentWins(t *testing.T) {
	c := Curve{
		{Lo: 0, Hi: 5, Coefficients: []float64{1}},
		{Lo: 5, Hi: 10, Coefficients: []float64{2}},
	}

	v, err := c.Eval(5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = c.Eval(7)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestCurve_OutOfDomain(t *testing.T) {
	c := Curve{{Lo: 0, Hi: 5, Coefficients: []float64{1}}}

	for _, d := range []float64{-0.1, 5.1, math.NaN(), math.Inf(1)} {
		_, err := c.Eval(d)
		assert.ErrorIs(t, err, ErrOutOfDomain, "distance %v", d)
	}
}

func TestStrokesRemaining_NoModel(t *testing.T) {
	table := &Table{StrokesRemainingCurves: map[core.TerrainType]Curve{}}

	_, err := table.StrokesRemaining(100, core.TerrainFairway)
	assert.ErrorIs(t, err, ErrNoModel)

	_, err = table.HoleOutRate(100, core.TerrainFairway)
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestStrokesRemaining_Clamped(t *testing.T) {
	table := &Table{
		StrokesRemainingCurves: map[core.TerrainType]Curve{
			core.TerrainRough: {{Lo: 0, Hi: 1000, Coefficients: []float64{0, 0, 1}}},
			core.TerrainHazard: {{Lo: 0, Hi: 1000, Coefficients: []float64{0, 0, -1}}},
		},
		HoleOutCurves: map[core.TerrainType]Curve{
			core.TerrainRough:  {{Lo: 0, Hi: 1000, Coefficients: []float64{0, 1}}},
			core.TerrainHazard: {{Lo: 0, Hi: 1000, Coefficients: []float64{0, -1}}},
		},
	}

	for d := 0.0; d <= 1000; d += 12.5 {
		v, err := table.StrokesRemaining(d, core.TerrainRough)
		require.NoError(t, err)
		assert.True(t, v >= MinStrokesRemaining && v <= MaxStrokesRemaining)

		v, err = table.StrokesRemaining(d, core.TerrainHazard)
		require.NoError(t, err)
		assert.True(t, v >= MinStrokesRemaining && v <= MaxStrokesRemaining)

		h, err := table.HoleOutRate(d, core.TerrainRough)
		require.NoError(t, err)
		assert.True(t, h >= 0 && h <= 1)

		h, err = table.HoleOutRate(d, core.TerrainHazard)
		require.NoError(t, err)
		assert.True(t, h >= 0 && h <= 1)
	}

	v, _ := table.StrokesRemaining(500, core.TerrainRough)
	assert.Equal(t, MaxStrokesRemaining, v)
	v, _ = table.StrokesRemaining(500, core.TerrainHazard)
	assert.Equal(t, MinStrokesRemaining, v)
}

func TestDefault_CoversEveryCourseTerrain(t *testing.T) {
	table := Default()
	require.NoError(t, table.Validate())

	for _, terrain := range core.AllTerrains {
		if terrain == core.TerrainHole {
			continue
		}
		_, err := table.StrokesRemaining(0, terrain)
		assert.NoError(t, err, terrain.String())
		_, err = table.HoleOutRate(0, terrain)
		assert.NoError(t, err, terrain.String())
	}
}

func TestDefault_FairwayIncreasesWithDistance(t *testing.T) {
	table := Default()

	prev, err := table.StrokesRemaining(0, core.TerrainFairway)
	require.NoError(t, err)
	for d := 10.0; d <= 590; d += 10 {
		v, err := table.StrokesRemaining(d, core.TerrainFairway)
		require.NoError(t, err)
		assert.Greater(t, v, prev, "distance %v", d)
		prev = v
	}
}

func TestDefault_GreenHoleOutIsContinuous(t *testing.T) {
	table := Default()

	for _, d := range []float64{2, 10} {
		below, err := table.HoleOutRate(d-1e-9, core.TerrainGreen)
		require.NoError(t, err)
		at, err := table.HoleOutRate(d, core.TerrainGreen)
		require.NoError(t, err)
		assert.InDelta(t, below, at, 1e-6, "distance %v", d)
	}
}

func TestDefault_CoversLongDistances(t *testing.T) {
	table := Default()

	cases := []struct {
		terrain  core.TerrainType
		distance float64
	}{
		{core.TerrainGreen, 60},
		{core.TerrainGreen, 250},
		{core.TerrainTee, 800},
		{core.TerrainFairway, MaxDistance},
	}
	for _, c := range cases {
		v, err := table.StrokesRemaining(c.distance, c.terrain)
		require.NoError(t, err, "%s at %v", c.terrain, c.distance)
		assert.True(t, v > 0 && v <= MaxStrokesRemaining, "%s at %v: %v", c.terrain, c.distance, v)

		_, err = table.HoleOutRate(c.distance, c.terrain)
		require.NoError(t, err, "%s at %v", c.terrain, c.distance)
	}

	_, err := table.StrokesRemaining(MaxDistance+1, core.TerrainTee)
	assert.ErrorIs(t, err, ErrOutOfDomain)
}

func TestDefault_ContinuousAtSegmentJoins(t *testing.T) {
	table := Default()

	joins := map[core.TerrainType]float64{
		core.TerrainGreen:       40,
		core.TerrainFairway:     600,
		core.TerrainTee:         600,
		core.TerrainRough:       600,
		core.TerrainBunker:      600,
		core.TerrainHazard:      600,
		core.TerrainOutOfBounds: 600,
	}
	for terrain, d := range joins {
		at, err := table.StrokesRemaining(d, terrain)
		require.NoError(t, err)
		above, err := table.StrokesRemaining(d+1e-9, terrain)
		require.NoError(t, err)
		assert.InDelta(t, at, above, 1e-6, "%s at %v", terrain, d)

		further, err := table.StrokesRemaining(d+100, terrain)
		require.NoError(t, err)
		assert.Greater(t, further, at, "%s keeps rising past %v", terrain, d)
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.StrokesRemainingCurves[core.TerrainFairway][0].Coefficients[0] = 99

	b := Default()
	assert.Equal(t, 2.2, b.StrokesRemainingCurves[core.TerrainFairway][0].Coefficients[0])
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.json")
	data := `{
		"strokesRemaining": {
			"fairway": [{"lo": 0, "hi": 300, "coefficients": [2.0, 0.01]}],
			"out_of_bounds": [{"lo": 0, "hi": 300, "coefficients": [4.0]}]
		},
		"holeOut": {
			"fairway": [{"lo": 0, "hi": 300, "coefficients": [0.01]}]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	table, err := LoadFile(path)
	require.NoError(t, err)

	v, err := table.StrokesRemaining(100, core.TerrainFairway)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-12)

	v, err = table.StrokesRemaining(10, core.TerrainOutOfBounds)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	h, err := table.HoleOutRate(50, core.TerrainFairway)
	require.NoError(t, err)
	assert.Equal(t, 0.01, h)

	_, err = table.StrokesRemaining(301, core.TerrainFairway)
	assert.ErrorIs(t, err, ErrOutOfDomain)
}

func TestLoadFile_UnknownTerrain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.json")
	data := `{"strokesRemaining": {"lava": [{"lo": 0, "hi": 1, "coefficients": [1]}]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestLoadFile_InvertedDomain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.json")
	data := `{"strokesRemaining": {"fairway": [{"lo": 10, "hi": 1, "coefficients": [1]}]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading regression table")
}
