package bbolt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database/databasetest"
)

func setupTestDB(t *testing.T) *Manager {
	manager := NewManager(t.TempDir())
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestBBoltDB(t *testing.T) {
	manager := setupTestDB(t)
	db, err := manager.OpenDB("conformance")
	require.NoError(t, err)
	databasetest.Run(t, db)
}

func TestBBoltLifecycle(t *testing.T) {
	manager := setupTestDB(t)
	ctx := context.Background()

	db, err := manager.OpenDB("test")
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []byte("lifecycle-test"), []byte("test-value")))
	require.NoError(t, manager.CloseDB("test"))

	_, err = os.Stat(filepath.Join(manager.path, "test.db"))
	require.NoError(t, err, "database file was not created")
	assert.ErrorIs(t, manager.CloseDB("test"), database.ErrDBNotOpen)

	db, err = manager.OpenDB("test")
	require.NoError(t, err)
	got, err := db.Read(ctx, []byte("lifecycle-test"))
	require.NoError(t, err)
	assert.Equal(t, "test-value", string(got))
}

func TestBBoltBatchRollsBack(t *testing.T) {
	manager := setupTestDB(t)
	ctx := context.Background()
	db, err := manager.OpenDB("batch")
	require.NoError(t, err)

	err = db.Batch(ctx, []database.BatchOperation{
		{Type: database.BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: database.BatchOpType(42), Key: []byte("b")},
	})
	assert.ErrorIs(t, err, database.ErrUnknownBatchOp)
	_, err = db.Read(ctx, []byte("a"))
	assert.ErrorIs(t, err, database.ErrKeyNotFound)
}
