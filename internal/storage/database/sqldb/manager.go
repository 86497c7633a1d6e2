package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

const openTimeout = 10 * time.Second

// Manager shares one connection pool between all named databases.
type Manager struct {
	dialect Dialect
	dsn     string
	pool    *sql.DB
	open    map[string]struct{}
	mu      sync.Mutex
}

func NewManager(dialect Dialect, dsn string) *Manager {
	return &Manager{dialect: dialect, dsn: dsn, open: make(map[string]struct{})}
}

// NewManagerWithDB uses an existing pool, e.g. one created by sqlmock.
func NewManagerWithDB(dialect Dialect, pool *sql.DB) *Manager {
	return &Manager{dialect: dialect, pool: pool, open: make(map[string]struct{})}
}

func (m *Manager) connect(ctx context.Context) (*sql.DB, error) {
	if m.pool != nil {
		return m.pool, nil
	}
	pool, err := sql.Open(m.dialect.Driver, m.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", m.dialect.Name, err)
	}
	if m.dialect.Name == SQLite.Name {
		// sqlite allows a single writer
		pool.SetMaxOpenConns(1)
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", m.dialect.Name, err)
	}
	m.pool = pool
	return pool, nil
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	pool, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	db, err := NewDB(ctx, pool, m.dialect, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	m.open[name] = struct{}{}
	return db, nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.open[name]; !exists {
		return fmt.Errorf("%w: %s", database.ErrDBNotOpen, name)
	}
	delete(m.open, name)
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = make(map[string]struct{})
	if m.pool == nil {
		return nil
	}
	err := m.pool.Close()
	m.pool = nil
	return err
}
