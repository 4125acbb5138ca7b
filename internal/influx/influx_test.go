package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fairwaylabs/sgrid/internal/config"
	"github.com/fairwaylabs/sgrid/pkg/core"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvaluation(kind core.GridKind) *core.Evaluation {
	return &core.Evaluation{
		Time: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Grid: &core.Grid{
			Kind:                  kind,
			Cells:                 make([]core.Cell, 7),
			WeightedStrokesGained: -0.25,
			Dispersion:            12,
			StartTerrain:          core.TerrainFairway,
			IdealStrokesGained:    0.1,
		},
		Duration: 3 * time.Millisecond,
	}
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{Enabled: false}, "")
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
}

func TestEvaluationPoint_Outcome(t *testing.T) {
	point, err := EvaluationPoint(testEvaluation(core.GridOutcome))
	require.NoError(t, err)

	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	assert.True(t, strings.HasPrefix(line, Measurement+","), line)
	assert.Contains(t, line, "kind=outcome")
	assert.Contains(t, line, "startTerrain=fairway")
	assert.Contains(t, line, "weighted_strokes_gained=-0.25")
	assert.Contains(t, line, "cells=7i")
	assert.NotContains(t, line, "ideal_strokes_gained")
}

func TestEvaluationPoint_TargetHasIdeal(t *testing.T) {
	point, err := EvaluationPoint(testEvaluation(core.GridTarget))
	require.NoError(t, err)

	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	assert.Contains(t, line, "kind=target")
	assert.Contains(t, line, "ideal_strokes_gained=0.1")
	assert.Contains(t, line, "relative_strokes_gained=")
}

func TestEvaluationPoint_NoGrid(t *testing.T) {
	_, err := EvaluationPoint(&core.Evaluation{})
	assert.Error(t, err)
}

func TestWriteEvaluation_BackupFile(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(zerolog.Nop(), config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     "1",
		Org:      "sgrid",
		Bucket:   "sgrid_evaluations",
	}, backup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)

	require.NoError(t, m.WriteEvaluation(testEvaluation(core.GridOutcome)))
	require.NoError(t, m.WriteEvaluation(testEvaluation(core.GridTarget)))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "kind=outcome")
	assert.Contains(t, lines[1], "kind=target")
}

func TestWritePoint_NotConnected(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{}, "")
	point, err := EvaluationPoint(testEvaluation(core.GridOutcome))
	require.NoError(t, err)
	assert.Error(t, m.WritePoint(point))
	assert.NoError(t, m.Close())
}
