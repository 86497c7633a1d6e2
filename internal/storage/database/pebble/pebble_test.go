package pebble

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

func TestPebbleDB(t *testing.T) {
	manager := NewManager(t.TempDir())
	defer manager.Close()

	db, err := manager.OpenDB("conformance")
	require.NoError(t, err)
	databasetest.Run(t, db)
}

func TestPebbleManagerLifecycle(t *testing.T) {
	dir := t.TempDir()
	manager := NewManager(dir)
	ctx := context.Background()

	db, err := manager.OpenDB("oracle")
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
	require.NoError(t, manager.CloseDB("oracle"))

	_, err = os.Stat(filepath.Join(dir, "oracle.pebble"))
	require.NoError(t, err)
	assert.ErrorIs(t, manager.CloseDB("oracle"), database.ErrDBNotOpen)

	// data survives a reopen
	db, err = manager.OpenDB("oracle")
	require.NoError(t, err)
	got, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	require.NoError(t, manager.Close())
}
