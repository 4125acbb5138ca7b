package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fairwaylabs/sgrid/internal/database"
	"github.com/fairwaylabs/sgrid/pkg/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "sgrid.db"))
	require.NoError(t, err)
	b := New(db, zerolog.Nop())
	require.NoError(t, b.Init())
	t.Cleanup(func() {
		_ = b.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return b
}

func testEvaluation(kind core.GridKind) *core.Evaluation {
	return &core.Evaluation{
		Time: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Shot: core.ShotContext{
			Start:      core.Coordinate{X: 0, Y: 0},
			Aim:        core.Coordinate{X: 150, Y: 5},
			Pin:        core.Coordinate{X: 150, Y: 0},
			Dispersion: -0.1,
		},
		Grid: &core.Grid{
			Kind:                  kind,
			Cells:                 make([]core.Cell, 7),
			WeightedStrokesGained: -0.12,
			Dispersion:            15,
			StartTerrain:          core.TerrainFairway,
		},
		GeoJSON:  []byte(`{"type":"FeatureCollection","features":[]}`),
		Duration: 2 * time.Millisecond,
	}
}

func TestInit_WithoutDB(t *testing.T) {
	b := New(nil, zerolog.Nop())
	assert.Error(t, b.Init())
}

func TestRecordEvaluation_BeforeInit(t *testing.T) {
	b := New(nil, zerolog.Nop())
	assert.Error(t, b.RecordEvaluation(testEvaluation(core.GridOutcome)))
}

func TestRecordEvaluation_AssignsID(t *testing.T) {
	b := newTestBackend(t)

	first := testEvaluation(core.GridOutcome)
	second := testEvaluation(core.GridTarget)
	require.NoError(t, b.RecordEvaluation(first))
	require.NoError(t, b.RecordEvaluation(second))

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
}

func TestRecordEvaluation_RoundTrip(t *testing.T) {
	b := newTestBackend(t)

	e := testEvaluation(core.GridTarget)
	require.NoError(t, b.RecordEvaluation(e))

	rows, err := b.Recent(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, e.ID, row.ID)
	assert.Equal(t, "target", row.Kind)
	assert.Equal(t, 0, row.SRID)
	assert.Equal(t, "fairway", row.StartTerrain)
	assert.Equal(t, -0.1, row.DispersionInput)
	assert.Equal(t, 15.0, row.Dispersion)
	assert.Equal(t, 7, row.Cells)
	assert.InDelta(t, 2.0, row.DurationMs, 1e-9)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(row.Grid))

	xy, ok := row.Aim.XY()
	require.True(t, ok)
	assert.InDelta(t, 150, xy.X, 1e-9)
	assert.InDelta(t, 5, xy.Y, 1e-9)
}

func TestRecent_NewestFirst(t *testing.T) {
	b := newTestBackend(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.RecordEvaluation(testEvaluation(core.GridOutcome)))
	}

	rows, err := b.Recent(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Greater(t, rows[0].ID, rows[1].ID)
}

func TestRecordEvaluation_MissingGrid(t *testing.T) {
	b := newTestBackend(t)
	e := testEvaluation(core.GridOutcome)
	e.Grid = nil
	assert.Error(t, b.RecordEvaluation(e))
}
