package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryDB is an in-process DB. It backs tests and the "memory" storage backend.
type MemoryDB struct {
	data     map[string][]byte
	mu       sync.RWMutex
	isClosed bool
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		data: make(map[string][]byte),
	}
}

func (m *MemoryDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.isClosed {
		return nil, ErrDBClosed
	}
	if value, ok := m.data[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return nil, ErrKeyNotFound
}

func (m *MemoryDB) Write(ctx context.Context, key []byte, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return ErrDBClosed
	}
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryDB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *MemoryDB) Batch(ctx context.Context, ops []BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return ErrDBClosed
	}
	for _, op := range ops {
		if op.Type != BatchPut && op.Type != BatchDelete {
			return fmt.Errorf("%w: %d", ErrUnknownBatchOp, op.Type)
		}
	}
	for _, op := range ops {
		switch op.Type {
		case BatchPut:
			m.data[string(op.Key)] = append([]byte(nil), op.Value...)
		case BatchDelete:
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// Close marks the database closed; further calls fail with ErrDBClosed.
func (m *MemoryDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isClosed = true
	return nil
}

// sliceIterator iterates a snapshot of key/value pairs.
type sliceIterator struct {
	keys     [][]byte
	values   [][]byte
	position int
}

func (m *MemoryDB) Iterator(ctx context.Context, start, end []byte) (Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.isClosed {
		return nil, ErrDBClosed
	}

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if InRange([]byte(k), start, end) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	it := &sliceIterator{position: -1}
	for _, k := range keys {
		it.keys = append(it.keys, []byte(k))
		it.values = append(it.values, append([]byte(nil), m.data[k]...))
	}
	return it, nil
}

// NewSliceIterator iterates pairs already loaded in key order.
func NewSliceIterator(keys, values [][]byte) Iterator {
	return &sliceIterator{keys: keys, values: values, position: -1}
}

func (it *sliceIterator) Next() bool {
	it.position++
	return it.position < len(it.keys)
}

func (it *sliceIterator) Key() []byte {
	if it.position >= 0 && it.position < len(it.keys) {
		return it.keys[it.position]
	}
	return nil
}

func (it *sliceIterator) Value() []byte {
	if it.position >= 0 && it.position < len(it.values) {
		return it.values[it.position]
	}
	return nil
}

func (it *sliceIterator) Error() error {
	return nil
}

func (it *sliceIterator) Close() error {
	return nil
}

// MemoryManager hands out MemoryDB instances by name.
type MemoryManager struct {
	*Registry[*MemoryDB]
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{NewRegistry(func(string) (*MemoryDB, error) {
		return NewMemoryDB(), nil
	})}
}

func (m *MemoryManager) OpenDB(name string) (DB, error) {
	db, err := m.Open(name)
	if err != nil {
		return nil, err
	}
	return db, nil
}
