// internal/storage/storage.go
package storage

import "github.com/fairwaylabs/sgrid/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// RecordEvaluation persists e and assigns e.ID.
	RecordEvaluation(e *core.Evaluation) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the statistics service.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
