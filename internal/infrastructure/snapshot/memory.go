package snapshot

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory. Used for local development
// without Redis or Postgres, and in tests.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	expiry map[string]time.Time
	ttl    time.Duration
}

// NewMemoryStore creates a memory store; ttl <= 0 keeps entries forever
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string][]byte),
		expiry: make(map[string]time.Time),
		ttl:    ttl,
	}
}

// Get retrieves a snapshot
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, exists := m.data[key]
	if !exists {
		return nil, ErrNotFound
	}

	// Check expiry
	if expTime, hasExpiry := m.expiry[key]; hasExpiry && time.Now().After(expTime) {
		delete(m.data, key)
		delete(m.expiry, key)
		return nil, ErrNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put stores a snapshot, replacing any previous value
func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	if m.ttl > 0 {
		m.expiry[key] = time.Now().Add(m.ttl)
	}
	return nil
}

// Delete removes a snapshot; missing keys are ignored
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.expiry, key)
	return nil
}
