package main

import (
	"fmt"

	"github.com/fairwaylabs/sgrid/internal/config"
	"github.com/fairwaylabs/sgrid/internal/database"
	"github.com/fairwaylabs/sgrid/internal/storage"
	"gorm.io/gorm"
)

func initStorage() error {
	storageCfg := config.GetStorageConfig()

	db, err := openDB(storageCfg)
	if err != nil {
		return err
	}

	backend, err := storage.NewBackend(storageCfg, db, Logger.With().Str("component", "storage").Logger())
	if err != nil {
		Logger.Error().Err(err).Msg("Failed to create storage backend")
		return err
	}
	if backend == nil {
		Logger.Info().Msg("Evaluation storage disabled")
		return nil
	}

	if err := backend.Init(); err != nil {
		Logger.Error().Err(err).Msg("Failed to initialize storage backend")
		return err
	}
	storageBackend = backend
	Logger.Info().Str("type", storageCfg.Type).Msg("Storage backend initialized")
	return nil
}

// openDB connects the database the storage type needs, if any.
func openDB(storageCfg config.StorageConfig) (*gorm.DB, error) {
	var err error
	switch storageCfg.Type {
	case "postgres":
		DBManager = database.NewManager(Logger.With().Str("component", "database").Logger())
		err = DBManager.ConnectPostgres(config.GetDBConfig())
	case "sqlite":
		DBManager = database.NewManager(Logger.With().Str("component", "database").Logger())
		err = DBManager.ConnectSQLite(storageCfg.SQLite.Path)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", storageCfg.Type, err)
	}
	if err := DBManager.Setup(); err != nil {
		return nil, err
	}
	return DBManager.DB, nil
}

// dumpMemoryDB vacuums an in-memory SQLite database to its dump path so a
// session's evaluations survive the process.
func dumpMemoryDB(m *database.Manager, storageCfg config.StorageConfig) error {
	if m == nil || storageCfg.Type != "sqlite" || storageCfg.SQLite.Path != "" || storageCfg.SQLite.DumpPath == "" {
		return nil
	}
	return m.DumpMemoryToDisk(storageCfg.SQLite.DumpPath)
}
