package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"attendancelist/internal/apperrors"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	snap    Snapshot
	expires time.Time
}

// NewMemoryStore creates a store whose entries live for ttl after their last save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Save stores snap and sweeps expired entries.
func (m *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, id)
		}
	}
	m.entries[snap.ID] = memoryEntry{snap: snap, expires: now.Add(m.ttl)}
	return nil
}

// Get returns the snapshot for id.
func (m *MemoryStore) Get(ctx context.Context, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || m.now().After(e.expires) {
		delete(m.entries, id)
		return Snapshot{}, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	return e.snap, nil
}

// Len reports how many live entries the store holds.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
