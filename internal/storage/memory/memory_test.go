// internal/storage/memory/memory_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fairwaylabs/sgrid/internal/config"
	"github.com/fairwaylabs/sgrid/pkg/core"
)

func testEvaluation(kind core.GridKind, sg float64) *core.Evaluation {
	return &core.Evaluation{
		Time: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Shot: core.ShotContext{
			Start:      core.Coordinate{X: 0, Y: 0},
			Aim:        core.Coordinate{X: 150, Y: 0},
			Pin:        core.Coordinate{X: 150, Y: 0},
			Dispersion: 10,
		},
		Grid: &core.Grid{
			Kind:                  kind,
			Cells:                 make([]core.Cell, 3),
			WeightedStrokesGained: sg,
			Dispersion:            10,
			StartTerrain:          core.TerrainFairway,
		},
		GeoJSON:  []byte(`{"type":"FeatureCollection","features":[]}`),
		Duration: 1500 * time.Microsecond,
	}
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if b.evaluations == nil {
		t.Error("evaluations not initialized")
	}
}

func TestCloseWithoutEvaluationsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if path := b.GetExportedFilePath(); path != "" {
		t.Errorf("expected no export, got %s", path)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty output dir, got %d entries", len(entries))
	}
}

func TestRecordEvaluation_AssignsIDs(t *testing.T) {
	b := New(config.MemoryConfig{})

	first := testEvaluation(core.GridOutcome, -0.1)
	second := testEvaluation(core.GridTarget, 0.05)
	if err := b.RecordEvaluation(first); err != nil {
		t.Fatalf("RecordEvaluation failed: %v", err)
	}
	if err := b.RecordEvaluation(second); err != nil {
		t.Fatalf("RecordEvaluation failed: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}

	got := b.Evaluations()
	if len(got) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(got))
	}
	if got[1].Grid.Kind != core.GridTarget {
		t.Errorf("expected target kind, got %s", got[1].Grid.Kind)
	}
}

func TestRecordEvaluation_Concurrent(t *testing.T) {
	b := New(config.MemoryConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.RecordEvaluation(testEvaluation(core.GridOutcome, 0))
		}()
	}
	wg.Wait()

	evals := b.Evaluations()
	if len(evals) != 50 {
		t.Fatalf("expected 50 evaluations, got %d", len(evals))
	}
	seen := make(map[uint]bool)
	for _, e := range evals {
		if seen[e.ID] {
			t.Errorf("duplicate ID %d", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestGetExportMetadata(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.RecordEvaluation(testEvaluation(core.GridOutcome, -0.25))
	_ = b.RecordEvaluation(testEvaluation(core.GridTarget, 0.5))

	meta := b.GetExportMetadata()
	if meta.Kind != core.GridTarget {
		t.Errorf("expected last kind target, got %s", meta.Kind)
	}
	if meta.StrokesGained != 0.25 {
		t.Errorf("expected session total 0.25, got %v", meta.StrokesGained)
	}
	if meta.Dispersion != 10 {
		t.Errorf("expected dispersion 10, got %v", meta.Dispersion)
	}
}

func TestClose_UncompressedExport(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	_ = b.RecordEvaluation(testEvaluation(core.GridOutcome, -0.1))

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if !strings.HasSuffix(path, ".json") {
		t.Fatalf("expected .json export, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	var export SessionExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("invalid export JSON: %v", err)
	}
	if len(export.Evaluations) != 1 {
		t.Fatalf("expected 1 evaluation, got %d", len(export.Evaluations))
	}

	rec := export.Evaluations[0]
	if rec.Kind != core.GridOutcome || rec.Cells != 3 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.StartTerrain != core.TerrainFairway.String() {
		t.Errorf("expected fairway start, got %s", rec.StartTerrain)
	}
	if rec.DurationMs != 1.5 {
		t.Errorf("expected 1.5ms, got %v", rec.DurationMs)
	}
	if !strings.Contains(string(rec.Grid), "FeatureCollection") {
		t.Errorf("expected embedded grid, got %s", rec.Grid)
	}
}

func TestClose_CompressedExport(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	_ = b.RecordEvaluation(testEvaluation(core.GridTarget, 0.2))

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if !strings.HasSuffix(path, ".json.gz") {
		t.Fatalf("expected .json.gz export, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("export is not gzip: %v", err)
	}
	var export SessionExport
	if err := json.NewDecoder(gz).Decode(&export); err != nil {
		t.Fatalf("invalid export JSON: %v", err)
	}
	if len(export.Evaluations) != 1 || export.Evaluations[0].Kind != core.GridTarget {
		t.Errorf("unexpected export %+v", export.Evaluations)
	}
}

func TestBuildExport_SkipsInvalidGeoJSON(t *testing.T) {
	b := New(config.MemoryConfig{})
	e := testEvaluation(core.GridOutcome, 0)
	e.GeoJSON = []byte("not json")
	_ = b.RecordEvaluation(e)

	export := b.buildExport(time.Now())
	if export.Evaluations[0].Grid != nil {
		t.Errorf("expected invalid grid to be dropped, got %s", export.Evaluations[0].Grid)
	}
}
