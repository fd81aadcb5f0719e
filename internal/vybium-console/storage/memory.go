package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps encoded snapshots in a map
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save stores an encoded copy of snapshot
func (m *MemoryStore) Save(ctx context.Context, name string, snapshot *Snapshot) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}
	b, err := snapshot.marshal()
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", name, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.data[name] = b
	return nil
}

// Load decodes a stored snapshot
func (m *MemoryStore) Load(ctx context.Context, name string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	b, ok := m.data[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrSnapshotNotFound)
	}
	return unmarshalSnapshot(b)
}

// Delete removes a snapshot
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if _, ok := m.data[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrSnapshotNotFound)
	}
	delete(m.data, name)
	return nil
}

// List returns the stored names in order
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close drops every snapshot
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}
