package leveldb

import (
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

// Manager keeps each named database in its own leveldb directory under path.
type Manager struct {
	*database.Registry[*leveldb.DB]
}

func NewManager(path string) *Manager {
	return &Manager{database.NewRegistry(func(name string) (*leveldb.DB, error) {
		return leveldb.OpenFile(filepath.Join(path, name+".ldb"), nil)
	})}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	db, err := m.Open(name)
	if err != nil {
		return nil, err
	}
	return NewDB(db), nil
}
