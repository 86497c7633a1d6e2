package bbolt

import (
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

// Manager keeps one bbolt file per database name, with a bucket of the same name.
type Manager struct {
	*database.Registry[*bbolt.DB]
}

func NewManager(path string) *Manager {
	return &Manager{database.NewRegistry(func(name string) (*bbolt.DB, error) {
		return openFile(filepath.Join(path, name+".db"), []byte(name))
	})}
}

// openFile waits at most a second for the file lock, which a running server holds.
func openFile(path string, bucket []byte) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return db, nil
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	db, err := m.Open(name)
	if err != nil {
		return nil, err
	}
	return NewDB(db, []byte(name)), nil
}
