package storage

import (
	"context"
	"sync"

	"github.com/solhwan/pointclick/pkg/game"
)

// MemoryStore is an in-memory save store. It backs tests and the default
// configuration, where saves do not survive the process.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*game.Snapshot

	saveError error
	loadError error
}

var _ game.SaveStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*game.Snapshot)}
}

// SetSaveError makes subsequent saves fail with err. Used by tests.
func (m *MemoryStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SetLoadError makes subsequent loads fail with err. Used by tests.
func (m *MemoryStore) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadError = err
}

func (m *MemoryStore) SaveSnapshot(ctx context.Context, slot string, snap *game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	cp := *snap
	m.snapshots[slot] = &cp
	return nil
}

func (m *MemoryStore) LoadSnapshot(ctx context.Context, slot string) (*game.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadError != nil {
		return nil, m.loadError
	}
	snap, ok := m.snapshots[slot]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (m *MemoryStore) DeleteSnapshot(ctx context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, slot)
	return nil
}

func (m *MemoryStore) HasSnapshot(ctx context.Context, slot string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.snapshots[slot]
	return ok, nil
}
