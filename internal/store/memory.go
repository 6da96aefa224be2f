package store

import (
	"context"
	"sync"
	"time"

	"github.com/auditflow/auditflow/internal/domain"
)

// MemoryStore is an in-memory Store used in tests and single-process
// development setups. Snapshots are deep-copied on both Get and Put so
// callers never share mutable state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

// Get retrieves a live session snapshot by id.
func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sessions[sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	return entry.session.Clone(), nil
}

// Put replaces the session snapshot and resets its retention window.
func (m *MemoryStore) Put(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := session.Clone()
	cp.UpdatedAt = time.Now()
	m.sessions[session.SessionID] = memoryEntry{
		session:   cp,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// CleanupExpired removes sessions past their retention window.
func (m *MemoryStore) CleanupExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	now := time.Now()
	for id, entry := range m.sessions {
		if now.After(entry.expiresAt) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
