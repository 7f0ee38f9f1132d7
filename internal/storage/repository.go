// Package storage persists store snapshots under a namespace key.
// The store itself is storage-agnostic; the HTTP layer saves after each
// mutation and the process loads once at start.
package storage

import (
	"errors"
	"sync"

	"github.com/luxeshop/luxe-shop-backend/internal/store"
)

var ErrNotFound = errors.New("snapshot not found")

// Repository reads and writes store snapshots. Last write wins: no
// cross-process coordination is provided.
type Repository interface {
	Save(key string, snap store.Snapshot) error
	Load(key string) (store.Snapshot, error)
}

// InMemoryRepository is used for tests and for degraded operation when
// no durable backend is configured.
type InMemoryRepository struct {
	mu    sync.RWMutex
	snaps map[string]store.Snapshot
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{snaps: make(map[string]store.Snapshot)}
}

func (r *InMemoryRepository) Save(key string, snap store.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[key] = snap
	return nil
}

func (r *InMemoryRepository) Load(key string) (store.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snaps[key]
	if !ok {
		return store.Snapshot{}, ErrNotFound
	}
	return snap, nil
}
