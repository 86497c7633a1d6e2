// Package databasetest holds the behaviour every database.DB backend must share.
package databasetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

// Run exercises db. The database must start empty.
func Run(t *testing.T, db database.DB) {
	ctx := context.Background()

	t.Run("Write and Read", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
		got, err = db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("Missing key", func(t *testing.T) {
		_, err := db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))
		require.NoError(t, db.Delete(ctx, []byte("gone")))
		_, err := db.Read(ctx, []byte("gone"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Batch Operations", func(t *testing.T) {
		ops := []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("b1"), Value: []byte("value1")},
			{Type: database.BatchPut, Key: []byte("b2"), Value: []byte("value2")},
			{Type: database.BatchDelete, Key: []byte("b1")},
		}
		require.NoError(t, db.Batch(ctx, ops))

		_, err := db.Read(ctx, []byte("b1"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
		got, err := db.Read(ctx, []byte("b2"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value2"), got)
	})

	t.Run("Iterator", func(t *testing.T) {
		for _, k := range []string{"it/c", "it/a", "it/b", "iu"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("val-"+k)))
		}

		it, err := db.Iterator(ctx, []byte("it/"), []byte("it0"))
		require.NoError(t, err)
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
			assert.Equal(t, "val-"+string(it.Key()), string(it.Value()))
		}
		require.NoError(t, it.Error())
		assert.Equal(t, []string{"it/a", "it/b", "it/c"}, keys)
	})
}
