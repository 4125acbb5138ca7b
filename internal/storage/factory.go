// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/fairwaylabs/sgrid/internal/config"
	gormstorage "github.com/fairwaylabs/sgrid/internal/storage/gorm"
	"github.com/fairwaylabs/sgrid/internal/storage/memory"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// NewBackend creates a storage backend based on configuration.
// db is required for the sqlite and postgres types. A "none" type returns a nil
// backend and evaluations are not stored.
func NewBackend(cfg config.StorageConfig, db *gorm.DB, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres", "sqlite":
		if db == nil {
			return nil, fmt.Errorf("%s backend requires a database connection", cfg.Type)
		}
		return gormstorage.New(db, log), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
