package leveldb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database/databasetest"
)

func TestLevelDB(t *testing.T) {
	manager := NewManager(t.TempDir())
	defer manager.Close()

	db, err := manager.OpenDB("conformance")
	require.NoError(t, err)
	databasetest.Run(t, db)
}

func TestLevelDBClosed(t *testing.T) {
	manager := NewManager(t.TempDir())
	db, err := manager.OpenDB("closed")
	require.NoError(t, err)
	require.NoError(t, manager.CloseDB("closed"))

	_, err = db.Read(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, database.ErrDBClosed)
}
