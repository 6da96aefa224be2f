package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auditflow/auditflow/internal/domain"
)

func TestMemoryPutGetRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, sampleSession("m-1"), time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	loaded, err := m.Get(ctx, "m-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.ExtractedData[domain.PhaseDiscovery]["industry"] != "e-commerce" {
		t.Errorf("Extracted data lost: %v", loaded.ExtractedData)
	}
}

func TestMemoryGetUnknownSession(t *testing.T) {
	m := NewMemory()

	if _, err := m.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemorySnapshotsAreIsolated(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	original := sampleSession("m-2")
	if err := m.Put(ctx, original, time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Mutating the caller's copy must not affect the stored snapshot.
	original.Append(domain.RoleUser, "mutation after put")
	original.ExtractedData[domain.PhaseDiscovery]["industry"] = "changed"

	loaded, err := m.Get(ctx, "m-2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(loaded.Messages) != 2 {
		t.Errorf("Stored snapshot leaked caller mutation: %d messages", len(loaded.Messages))
	}
	if loaded.ExtractedData[domain.PhaseDiscovery]["industry"] != "e-commerce" {
		t.Errorf("Stored facts leaked caller mutation: %v", loaded.ExtractedData)
	}

	// And mutating a returned snapshot must not affect later reads.
	loaded.Append(domain.RoleUser, "mutation after get")
	again, _ := m.Get(ctx, "m-2")
	if len(again.Messages) != 2 {
		t.Errorf("Returned snapshot shares state with the store: %d messages", len(again.Messages))
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, sampleSession("m-3"), -time.Second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := m.Get(ctx, "m-3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for expired session, got %v", err)
	}

	deleted, err := m.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted session, got %d", deleted)
	}
}
