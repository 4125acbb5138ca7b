package convert

import (
	"testing"
	"time"

	"github.com/fairwaylabs/sgrid/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvaluation(start, aim, pin core.Coordinate) *core.Evaluation {
	return &core.Evaluation{
		Time: time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
		Shot: core.ShotContext{Start: start, Aim: aim, Pin: pin, Dispersion: -0.1},
		Grid: &core.Grid{
			Kind:                  core.GridTarget,
			Cells:                 make([]core.Cell, 3),
			WeightedStrokesGained: 0.12,
			Dispersion:            15,
			StartTerrain:          core.TerrainFairway,
			IdealStrokesGained:    0.2,
			BaselineStrokesGained: 0.12,
			RelativeStrokesGained: 0.08,
		},
		GeoJSON:  []byte(`{"type":"FeatureCollection","features":[]}`),
		Duration: 1500 * time.Microsecond,
	}
}

func TestCoreToEvaluation_Local(t *testing.T) {
	e := sampleEvaluation(core.Local(0, 0), core.Local(150, 5), core.Local(152, 0))

	m, err := CoreToEvaluation(e)
	require.NoError(t, err)

	assert.Equal(t, "target", m.Kind)
	assert.Equal(t, 0, m.SRID)
	assert.Equal(t, "fairway", m.StartTerrain)
	assert.Equal(t, -0.1, m.DispersionInput)
	assert.Equal(t, 15.0, m.Dispersion)
	assert.Equal(t, 3, m.Cells)
	assert.InDelta(t, 1.5, m.DurationMs, 1e-9)
	assert.Equal(t, e.Time, m.CreatedAt)

	xy, ok := m.Aim.XY()
	require.True(t, ok)
	assert.Equal(t, 150.0, xy.X)
	assert.Equal(t, 5.0, xy.Y)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(m.Grid))
}

func TestCoreToEvaluation_GeographicStoredInWebMercator(t *testing.T) {
	e := sampleEvaluation(core.LonLat(0, 0), core.LonLat(0.001, 0), core.LonLat(0.002, 0))

	m, err := CoreToEvaluation(e)
	require.NoError(t, err)

	assert.Equal(t, 3857, m.SRID)
	xy, ok := m.Pin.XY()
	require.True(t, ok)
	assert.InDelta(t, 222.64, xy.X, 0.01)
	assert.InDelta(t, 0, xy.Y, 1e-6)
}

func TestCoreToEvaluation_Errors(t *testing.T) {
	e := sampleEvaluation(core.Local(0, 0), core.Local(1, 1), core.Local(2, 2))
	e.Grid = nil
	_, err := CoreToEvaluation(e)
	assert.Error(t, err)

	e = sampleEvaluation(core.LonLat(0, 0), core.LonLat(0, 89.9), core.LonLat(0, 0))
	_, err = CoreToEvaluation(e)
	assert.Error(t, err)
}

func TestCoreToEvaluation_EmptyGeoJSON(t *testing.T) {
	e := sampleEvaluation(core.Local(0, 0), core.Local(1, 1), core.Local(2, 2))
	e.GeoJSON = nil

	m, err := CoreToEvaluation(e)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(m.Grid))
}
