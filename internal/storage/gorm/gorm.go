// Package gormstorage implements the storage.Backend interface on GORM,
// backed by either SQLite or PostgreSQL/PostGIS.
package gormstorage

import (
	"fmt"

	"github.com/fairwaylabs/sgrid/internal/database"
	"github.com/fairwaylabs/sgrid/internal/model"
	"github.com/fairwaylabs/sgrid/internal/model/convert"
	"github.com/fairwaylabs/sgrid/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Backend writes each evaluation as one row in the evaluations table.
type Backend struct {
	db      *gorm.DB
	log     zerolog.Logger
	dbReady bool
}

// New creates a new GORM storage backend on an open connection.
func New(db *gorm.DB, log zerolog.Logger) *Backend {
	return &Backend{db: db, log: log}
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.db == nil {
		return fmt.Errorf("no database connection")
	}
	if err := database.Migrate(b.db); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true
	b.log.Debug().Str("dialect", b.db.Dialector.Name()).Msg("Evaluation storage ready")
	return nil
}

// Close is a no-op; the connection is owned by the caller.
func (b *Backend) Close() error {
	b.dbReady = false
	return nil
}

// RecordEvaluation inserts e and copies the generated ID back.
func (b *Backend) RecordEvaluation(e *core.Evaluation) error {
	if !b.dbReady {
		return fmt.Errorf("storage not initialized")
	}

	row, err := convert.CoreToEvaluation(e)
	if err != nil {
		return fmt.Errorf("failed to convert evaluation: %w", err)
	}
	row.ID = 0

	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}
	e.ID = row.ID
	b.log.Debug().Uint("id", row.ID).Str("kind", row.Kind).Msg("Stored evaluation")
	return nil
}

// Recent returns the latest evaluations, newest first.
func (b *Backend) Recent(limit int) ([]model.Evaluation, error) {
	if !b.dbReady {
		return nil, fmt.Errorf("storage not initialized")
	}
	var rows []model.Evaluation
	err := b.db.Order("id desc").Limit(limit).Find(&rows).Error
	return rows, err
}
