//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks github.com/versemark/versemark-server/internal/settings Store

// Package settings persists small integer preferences such as the speak label id.
package settings

import (
	"context"
	"sync"
)

// Store is a key/value preference store.
// GetInt64 reports ok=false when the key has never been written.
type Store interface {
	GetInt64(ctx context.Context, key string) (value int64, ok bool, err error)
	SetInt64(ctx context.Context, key string, value int64) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Store, mostly for tests.
type Memory struct {
	mu     sync.RWMutex
	values map[string]int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]int64)}
}

// GetInt64 implements Store.
func (m *Memory) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// SetInt64 implements Store.
func (m *Memory) SetInt64(ctx context.Context, key string, value int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
