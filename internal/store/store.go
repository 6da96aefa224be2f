// Package store provides session persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/auditflow/auditflow/internal/domain"
)

// ErrNotFound is returned by Get when no live session exists for the id.
// Expired sessions are indistinguishable from sessions that never existed.
var ErrNotFound = errors.New("session not found")

// Store persists whole session snapshots. Every turn reads the full
// session, mutates an in-memory copy, and writes the full session back;
// there are no field-level patches. The store does not provide optimistic
// concurrency control: concurrent turns for one session are last-writer-wins.
type Store interface {
	// Get retrieves a session snapshot. Returns ErrNotFound for unknown
	// or expired ids.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Put replaces the session snapshot and resets its retention window.
	Put(ctx context.Context, session *domain.Session, ttl time.Duration) error

	// CleanupExpired removes sessions past their retention window and
	// returns the number deleted.
	CleanupExpired(ctx context.Context) (int64, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
