package database

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Registry tracks the handles a Manager has opened, keyed by database name.
// Opening a name twice returns the handle opened first.
type Registry[H io.Closer] struct {
	open    func(name string) (H, error)
	handles map[string]H
	mu      sync.Mutex
}

// NewRegistry returns a Registry that creates missing handles with open.
func NewRegistry[H io.Closer](open func(name string) (H, error)) *Registry[H] {
	return &Registry[H]{open: open, handles: make(map[string]H)}
}

// Open returns the handle for name, opening it on first use.
func (r *Registry[H]) Open(name string) (H, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, exists := r.handles[name]; exists {
		return h, nil
	}
	h, err := r.open(name)
	if err != nil {
		var zero H
		return zero, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	r.handles[name] = h
	return h, nil
}

func (r *Registry[H]) CloseDB(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, exists := r.handles[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrDBNotOpen, name)
	}
	delete(r.handles, name)
	return h.Close()
}

// Close closes every open handle and reports all failures.
func (r *Registry[H]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, h := range r.handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database %s: %w", name, err))
		}
		delete(r.handles, name)
	}
	return errors.Join(errs...)
}
