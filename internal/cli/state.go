package cli

import (
	"fmt"

	"github.com/usereml/lightecho-stellar-oracle/internal/config"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

// stateDB is the database holding the contract slots
const stateDB = "state"

// openState opens the configured backend and wraps it with the read cache
func openState(cfg *config.Config) (database.Manager, database.DB, error) {
	manager, err := storage.NewManager(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, err
	}
	db, err := manager.OpenDB(stateDB)
	if err != nil {
		manager.Close()
		return nil, nil, fmt.Errorf("failed to open %s database: %w", cfg.Storage.Backend, err)
	}
	if cfg.Storage.CacheSize == 0 {
		return manager, db, nil
	}
	cached, err := database.NewCachedDB(db, cfg.Storage.CacheSize)
	if err != nil {
		manager.Close()
		return nil, nil, err
	}
	return manager, cached, nil
}
