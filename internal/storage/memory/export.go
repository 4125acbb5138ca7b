// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fairwaylabs/sgrid/pkg/core"
)

// SessionExport is the root JSON structure of an export file
type SessionExport struct {
	ExportedAt  time.Time        `json:"exportedAt"`
	Evaluations []EvaluationJSON `json:"evaluations"`
}

// EvaluationJSON is one recorded evaluation
type EvaluationJSON struct {
	ID                    uint             `json:"id"`
	Time                  time.Time        `json:"time"`
	Kind                  core.GridKind    `json:"kind"`
	Shot                  core.ShotContext `json:"shot"`
	StartTerrain          string           `json:"startTerrain"`
	Dispersion            float64          `json:"dispersion"`
	WeightedStrokesGained float64          `json:"weightedStrokesGained"`
	Cells                 int              `json:"cells"`
	DurationMs            float64          `json:"durationMs"`
	Grid                  json.RawMessage  `json:"grid,omitempty"`
}

// exportJSON writes the session to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport(time.Now())

	timestamp := export.ExportedAt.Format("20060102_150405")
	filename := fmt.Sprintf("sgrid_%s.json", timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := writeExport(outputPath, export, b.cfg.CompressOutput); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport(now time.Time) SessionExport {
	export := SessionExport{
		ExportedAt:  now,
		Evaluations: make([]EvaluationJSON, 0, len(b.evaluations)),
	}

	for _, e := range b.evaluations {
		rec := EvaluationJSON{
			ID:         e.ID,
			Time:       e.Time,
			Shot:       e.Shot,
			DurationMs: float64(e.Duration.Microseconds()) / 1000,
		}
		if e.Grid != nil {
			rec.Kind = e.Grid.Kind
			rec.StartTerrain = e.Grid.StartTerrain.String()
			rec.Dispersion = e.Grid.Dispersion
			rec.WeightedStrokesGained = e.Grid.WeightedStrokesGained
			rec.Cells = len(e.Grid.Cells)
		}
		if json.Valid(e.GeoJSON) {
			rec.Grid = json.RawMessage(e.GeoJSON)
		}
		export.Evaluations = append(export.Evaluations, rec)
	}
	return export
}

func writeExport(path string, data SessionExport, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if !compress {
		return json.NewEncoder(f).Encode(data)
	}

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
