package host

import (
	"context"
	"errors"

	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

// txn buffers the writes of one invocation. Reads see the buffered values first.
type txn struct {
	db     database.DB
	ns     string
	writes map[oracle.DataKey][]byte
}

func newTxn(db database.DB, namespace string) *txn {
	return &txn{db: db, ns: namespace, writes: make(map[oracle.DataKey][]byte)}
}

// SlotKey returns the database key of a contract slot under namespace.
func SlotKey(namespace string, key oracle.DataKey) []byte {
	return []byte(namespace + "/" + key.String())
}

func (t *txn) Get(ctx context.Context, key oracle.DataKey) ([]byte, bool, error) {
	if v, ok := t.writes[key]; ok {
		return v, true, nil
	}
	v, err := t.db.Read(ctx, SlotKey(t.ns, key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t *txn) Set(ctx context.Context, key oracle.DataKey, value []byte) error {
	t.writes[key] = append([]byte(nil), value...)
	return nil
}

// commit writes every buffered slot in one batch.
func (t *txn) commit(ctx context.Context) error {
	if len(t.writes) == 0 {
		return nil
	}
	ops := make([]database.BatchOperation, 0, len(t.writes))
	for _, key := range oracle.AllKeys {
		if v, ok := t.writes[key]; ok {
			ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: SlotKey(t.ns, key), Value: v})
		}
	}
	return t.db.Batch(ctx, ops)
}
