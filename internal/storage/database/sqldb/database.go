package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

type DB struct {
	db      *sql.DB
	table   string
	dialect Dialect
}

// NewDB creates the backing table for name if needed.
func NewDB(ctx context.Context, db *sql.DB, dialect Dialect, name string) (*DB, error) {
	d := &DB{db: db, table: tableName(name), dialect: dialect}
	if _, err := db.ExecContext(ctx, dialect.createTable(d.table)); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", d.table, err)
	}
	return d, nil
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrConnDone) {
		return database.ErrDBClosed
	}
	return err
}

func (s *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.selectOne(s.table), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrKeyNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return value, nil
}

func (s *DB) Write(ctx context.Context, key []byte, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert(s.table), key, value)
	return mapErr(err)
}

func (s *DB) Delete(ctx context.Context, key []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.deleteOne(s.table), key)
	return mapErr(err)
}

func (s *DB) Batch(ctx context.Context, ops []database.BatchOperation) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			_, err = tx.ExecContext(ctx, s.dialect.upsert(s.table), op.Key, op.Value)
		case database.BatchDelete:
			_, err = tx.ExecContext(ctx, s.dialect.deleteOne(s.table), op.Key)
		default:
			err = fmt.Errorf("%w: %d", database.ErrUnknownBatchOp, op.Type)
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Iterator loads the whole range up front so no connection stays checked out.
func (s *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	query, args := s.dialect.selectRange(s.table, start, end)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var keys, values [][]byte
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return database.NewSliceIterator(keys, values), nil
}
