package sqldb

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database/databasetest"
)

func TestSQLiteDB(t *testing.T) {
	manager := NewManager(SQLite, filepath.Join(t.TempDir(), "oracle.sqlite"))
	defer manager.Close()

	db, err := manager.OpenDB("conformance")
	require.NoError(t, err)
	databasetest.Run(t, db)

	require.NoError(t, manager.CloseDB("conformance"))
	assert.ErrorIs(t, manager.CloseDB("conformance"), database.ErrDBNotOpen)
}

func TestPostgresDialect(t *testing.T) {
	pool, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv_oracle_main (k BYTEA PRIMARY KEY, v BYTEA NOT NULL)")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	manager := NewManagerWithDB(Postgres, pool)
	db, err := manager.OpenDB("oracle-main")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_oracle_main (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = excluded.v")).
		WithArgs([]byte("k"), []byte("v")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT v FROM kv_oracle_main WHERE k = $1")).
		WithArgs([]byte("k")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow([]byte("v")))
	got, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT v FROM kv_oracle_main WHERE k = $1")).
		WithArgs([]byte("nope")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}))
	_, err = db.Read(ctx, []byte("nope"))
	assert.ErrorIs(t, err, database.ErrKeyNotFound)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_oracle_main")).
		WithArgs([]byte("a"), []byte("1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_oracle_main WHERE k = $1")).
		WithArgs([]byte("b")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, db.Batch(ctx, []database.BatchOperation{
		{Type: database.BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: database.BatchDelete, Key: []byte("b")},
	}))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_oracle_main")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()
	err = db.Batch(ctx, []database.BatchOperation{
		{Type: database.BatchPut, Key: []byte("a"), Value: []byte("2")},
	})
	assert.ErrorIs(t, err, assert.AnError)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT k, v FROM kv_oracle_main WHERE k >= $1 AND k < $2 ORDER BY k")).
		WithArgs([]byte("a"), []byte("z")).
		WillReturnRows(sqlmock.NewRows([]string{"k", "v"}).
			AddRow([]byte("a"), []byte("1")).
			AddRow([]byte("c"), []byte("3")))
	it, err := db.Iterator(ctx, []byte("a"), []byte("z"))
	require.NoError(t, err)
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Close())
	assert.Equal(t, []string{"a", "c"}, keys)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "kv_oracle", tableName("oracle"))
	assert.Equal(t, "kv_my_db_1", tableName("My-DB.1"))
}
