package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"memory", "pebble", "bbolt", "leveldb", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(dir, backend)
			m, err := NewManager(backend, path, "")
			require.NoError(t, err)
			defer m.Close()

			db, err := m.OpenDB("oracle")
			require.NoError(t, err)
			require.NoError(t, db.Write(context.Background(), []byte("k"), []byte("v")))
			got, err := db.Read(context.Background(), []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
		})
	}

	_, err := NewManager("postgres", "", "")
	assert.Error(t, err)
	_, err = NewManager("rocksdb", dir, "")
	assert.Error(t, err)
}
