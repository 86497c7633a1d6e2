// Package storage builds the database.Manager selected by configuration.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database/bbolt"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database/leveldb"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database/pebble"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database/sqldb"
)

// Backends lists the accepted storage.backend values.
var Backends = []string{"memory", "pebble", "bbolt", "leveldb", "sqlite", "postgres"}

// SQLiteFile is the database file sqlite creates under the data directory.
const SQLiteFile = "oracle.sqlite"

// NewManager returns a manager for backend. File backends create path if missing;
// sqlite opens SQLiteFile under path unless dsn is set; postgres requires dsn.
func NewManager(backend, path, dsn string) (database.Manager, error) {
	switch backend {
	case "memory":
		return database.NewMemoryManager(), nil
	case "pebble", "bbolt", "leveldb":
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir %s: %w", path, err)
		}
		switch backend {
		case "pebble":
			return pebble.NewManager(path), nil
		case "bbolt":
			return bbolt.NewManager(path), nil
		default:
			return leveldb.NewManager(path), nil
		}
	case "sqlite":
		if dsn == "" {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir %s: %w", path, err)
			}
			dsn = filepath.Join(path, SQLiteFile)
		}
		return sqldb.NewManager(sqldb.SQLite, dsn), nil
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres backend needs storage.dsn")
		}
		return sqldb.NewManager(sqldb.Postgres, dsn), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
