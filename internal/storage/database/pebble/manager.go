package pebble

import (
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

// Manager keeps each named database in its own pebble directory under path.
type Manager struct {
	*database.Registry[*pebble.DB]
}

func NewManager(path string) *Manager {
	return &Manager{database.NewRegistry(func(name string) (*pebble.DB, error) {
		return pebble.Open(filepath.Join(path, name+".pebble"), &pebble.Options{})
	})}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	db, err := m.Open(name)
	if err != nil {
		return nil, err
	}
	return NewDB(db), nil
}
