package database

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when CachedDB is built with a non-positive size
const DefaultCacheSize = 256

// CachedDB keeps recently read values of an underlying DB in an LRU cache.
// Writes go through to the DB and then update the cache.
type CachedDB struct {
	db    DB
	cache *lru.Cache[string, []byte]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedDB wraps db with a read cache of size entries.
func NewCachedDB(db DB, size int) (*CachedDB, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedDB{db: db, cache: cache}, nil
}

func (c *CachedDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if v, ok := c.cache.Get(string(key)); ok {
		c.hits.Add(1)
		return append([]byte(nil), v...), nil
	}
	c.misses.Add(1)

	v, err := c.db.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(string(key), append([]byte(nil), v...))
	return v, nil
}

func (c *CachedDB) Write(ctx context.Context, key []byte, value []byte) error {
	if err := c.db.Write(ctx, key, value); err != nil {
		c.cache.Remove(string(key))
		return err
	}
	c.cache.Add(string(key), append([]byte(nil), value...))
	return nil
}

func (c *CachedDB) Delete(ctx context.Context, key []byte) error {
	c.cache.Remove(string(key))
	return c.db.Delete(ctx, key)
}

func (c *CachedDB) Batch(ctx context.Context, ops []BatchOperation) error {
	if err := c.db.Batch(ctx, ops); err != nil {
		for _, op := range ops {
			c.cache.Remove(string(op.Key))
		}
		return err
	}
	for _, op := range ops {
		if op.Type == BatchPut {
			c.cache.Add(string(op.Key), append([]byte(nil), op.Value...))
		} else {
			c.cache.Remove(string(op.Key))
		}
	}
	return nil
}

func (c *CachedDB) Iterator(ctx context.Context, start, end []byte) (Iterator, error) {
	return c.db.Iterator(ctx, start, end)
}

// Stats returns the cache hit and miss counters.
func (c *CachedDB) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
