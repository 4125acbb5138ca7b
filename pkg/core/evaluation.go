// pkg/core/evaluation.go
package core

import "time"

// Evaluation is one completed grid evaluation, as handed to storage and metrics.
type Evaluation struct {
	ID       uint // assigned by the storage backend
	Time     time.Time
	Shot     ShotContext
	Grid     *Grid
	GeoJSON  []byte // exported FeatureCollection, in the course CRS
	Duration time.Duration
}

// UploadMetadata describes an exported grid sent to the statistics service.
type UploadMetadata struct {
	Kind          GridKind
	StrokesGained float64
	Dispersion    float64
	Tag           string
}
