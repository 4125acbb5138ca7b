// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/fairwaylabs/sgrid/internal/config"
	"github.com/fairwaylabs/sgrid/pkg/core"
)

// Backend keeps evaluations in memory and exports them to JSON on Close
type Backend struct {
	cfg         config.MemoryConfig
	evaluations []core.Evaluation

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:         cfg,
		evaluations: make([]core.Evaluation, 0),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close writes the session export, if anything was recorded
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.evaluations) == 0 {
		return nil
	}
	return b.exportJSON()
}

// RecordEvaluation stores a copy of e and assigns its ID
func (b *Backend) RecordEvaluation(e *core.Evaluation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	e.ID = b.idCounter
	b.evaluations = append(b.evaluations, *e)
	return nil
}

// Evaluations returns a snapshot of everything recorded so far
func (b *Backend) Evaluations() []core.Evaluation {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Evaluation, len(b.evaluations))
	copy(out, b.evaluations)
	return out
}

// GetExportedFilePath returns the path of the last export, empty before Close
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata summarises the session for upload.
// Kind and dispersion come from the last evaluation; strokes gained is the
// session total.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	meta := core.UploadMetadata{Tag: "session"}
	for _, e := range b.evaluations {
		if e.Grid == nil {
			continue
		}
		meta.Kind = e.Grid.Kind
		meta.Dispersion = e.Grid.Dispersion
		meta.StrokesGained += e.Grid.WeightedStrokesGained
	}
	return meta
}
