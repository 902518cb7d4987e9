package storage

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryRepo is an in-memory implementation of Repo
type InMemoryRepo struct {
	mu    sync.RWMutex
	items map[string]map[string]string // namespace -> key -> value
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory storage repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		items: make(map[string]map[string]string),
	}
}

// SetItem creates or overwrites a value
func (r *InMemoryRepo) SetItem(_ context.Context, namespace, key, value string) error {
	if err := validate(namespace, key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[namespace]; !ok {
		r.items[namespace] = make(map[string]string)
	}
	r.items[namespace][key] = value
	return nil
}

// GetItem returns the stored value or ErrNotFound
func (r *InMemoryRepo) GetItem(_ context.Context, namespace, key string) (string, error) {
	if err := validate(namespace, key); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.items[namespace][key]
	if !ok {
		return "", fmt.Errorf("[InMemoryRepo GetItem] %s: %w", key, ErrNotFound)
	}
	return value, nil
}

// RemoveItem deletes a value, removing a missing key is not an error
func (r *InMemoryRepo) RemoveItem(_ context.Context, namespace, key string) error {
	if err := validate(namespace, key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.items[namespace]
	if !ok {
		return nil
	}
	delete(ns, key)

	// Clean up empty namespace map
	if len(ns) == 0 {
		delete(r.items, namespace)
	}
	return nil
}

func validate(namespace, key string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if key == "" {
		return fmt.Errorf("key is required")
	}
	return nil
}
