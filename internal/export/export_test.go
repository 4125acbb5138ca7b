package export_test

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/fairwaylabs/sgrid/internal/course"
	"github.com/fairwaylabs/sgrid/internal/engine"
	"github.com/fairwaylabs/sgrid/internal/export"
	"github.com/fairwaylabs/sgrid/internal/regression"
	"github.com/fairwaylabs/sgrid/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a roughly 300 m square fairway near Edinburgh
const lon0, lat0 = -3.2, 55.95

func geoCourse(t *testing.T) *course.Course {
	t.Helper()
	seq := geom.NewSequence([]float64{
		lon0, lat0,
		lon0 + 0.005, lat0,
		lon0 + 0.005, lat0 + 0.003,
		lon0, lat0 + 0.003,
		lon0, lat0,
	}, geom.DimXY)
	square := geom.NewPolygon([]geom.LineString{geom.NewLineString(seq)}).AsGeometry()
	c, err := course.New([]course.Feature{
		{Boundary: true, Geometry: square},
		{Terrain: core.TerrainFairway, Geometry: square},
	}, core.CRSWGS84)
	require.NoError(t, err)
	return c
}

func evaluate(t *testing.T, c *course.Course, kind core.GridKind) *core.Grid {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.OutcomeCells = 200
	cfg.SuperGridCells = 800
	cfg.CandidateCells = 20
	e, err := engine.New(cfg, regression.Default(), nil)
	require.NoError(t, err)

	shot := core.ShotContext{
		Start:      core.LonLat(lon0+0.001, lat0+0.0015),
		Aim:        core.LonLat(lon0+0.003, lat0+0.0015),
		Pin:        core.LonLat(lon0+0.003, lat0+0.0015),
		Dispersion: -0.1,
	}
	var grid *core.Grid
	if kind == core.GridTarget {
		grid, err = e.Target(c, shot)
	} else {
		grid, err = e.Outcome(c, shot)
	}
	require.NoError(t, err)
	return grid
}

func TestFeatures_OutcomeInCourseCRS(t *testing.T) {
	c := geoCourse(t)
	grid := evaluate(t, c, core.GridOutcome)

	features := export.Features(grid, c.Frame())
	require.Len(t, features, len(grid.Cells))

	for i, f := range features {
		poly, ok := f.Geometry.AsPolygon()
		require.True(t, ok)
		ring := poly.ExteriorRing().Coordinates()
		for j := 0; j < ring.Length(); j++ {
			xy := ring.GetXY(j)
			assert.InDelta(t, lon0+0.003, xy.X, 0.001, "feature %d", i)
			assert.InDelta(t, lat0+0.0015, xy.Y, 0.001, "feature %d", i)
		}
		assert.Contains(t, f.Properties, "probability")
	}

	last := features[len(features)-1]
	assert.Equal(t, "hole", last.Properties["terrainType"])
	assert.NotContains(t, last.Properties, "percentile")
	assert.Equal(t, "fairway", features[0].Properties["terrainType"])
	assert.Contains(t, features[0].Properties, "percentile")
}

func TestSummary_Outcome(t *testing.T) {
	c := geoCourse(t)
	grid := evaluate(t, c, core.GridOutcome)

	s := export.NewSummary(grid, c.Frame())
	assert.Equal(t, core.GridOutcome, s.Kind)
	assert.Equal(t, len(grid.Cells), s.Cells)
	assert.Equal(t, grid.WeightedStrokesGained, s.WeightedStrokesGained)
	assert.Nil(t, s.IdealStrokesGained)
	assert.Nil(t, s.BestAim)
}

func TestSummary_TargetBestAim(t *testing.T) {
	c := geoCourse(t)
	grid := evaluate(t, c, core.GridTarget)

	s := export.NewSummary(grid, c.Frame())
	require.NotNil(t, s.IdealStrokesGained)
	require.NotNil(t, s.BestAim)
	assert.Equal(t, grid.IdealStrokesGained, *s.IdealStrokesGained)
	assert.Equal(t, core.CRSWGS84, s.BestAim.CRS)

	// the best aim lies within one dispersion of the aim point (about 12.5 m)
	metresPerDegLat := 111320.0
	dy := (s.BestAim.Y - (lat0 + 0.0015)) * metresPerDegLat
	dx := (s.BestAim.X - (lon0 + 0.003)) * metresPerDegLat * math.Cos(lat0*math.Pi/180)
	assert.LessOrEqual(t, math.Hypot(dx, dy), grid.Dispersion+0.5)
}

func TestWrite_EncodesFeatureCollection(t *testing.T) {
	c := geoCourse(t)
	grid := evaluate(t, c, core.GridTarget)

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, grid, c.Frame()))

	var doc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
		Summary  map[string]any    `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	assert.Len(t, doc.Features, len(grid.Cells))
	assert.Equal(t, "target", doc.Summary["kind"])
	assert.Equal(t, "fairway", doc.Summary["startTerrain"])
	assert.Contains(t, doc.Summary, "bestAim")

	var first geom.GeoJSONFeature
	require.NoError(t, json.Unmarshal(doc.Features[0], &first))
	assert.Equal(t, geom.TypePolygon, first.Geometry.Type())
	assert.Contains(t, first.Properties, "relativeStrokesGained")
}
