package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/auditflow/auditflow/internal/domain"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return s
}

func sampleSession(id string) *domain.Session {
	s := domain.NewSession(id, time.Now())
	s.Append(domain.RoleAssistant, "Hi! What industry are you in?")
	s.Append(domain.RoleUser, "E-commerce, about 40 people")
	s.MergeFacts(domain.PhaseDiscovery, domain.Facts{
		"industry":    "e-commerce",
		"companySize": "40",
	})
	return s
}

func TestSQLitePutGetRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	session := sampleSession("s-1")
	if err := s.Put(ctx, session, time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	loaded, err := s.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Phase != domain.PhaseDiscovery {
		t.Errorf("Phase = %q", loaded.Phase)
	}
	if len(loaded.Messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(loaded.Messages))
	}
	if loaded.ExtractedData[domain.PhaseDiscovery]["industry"] != "e-commerce" {
		t.Errorf("Extracted data lost: %v", loaded.ExtractedData)
	}
	if loaded.Roadmap != nil || loaded.PainScore != nil || loaded.EstimatedValue != nil {
		t.Error("Report fields should be nil before completion")
	}
}

func TestSQLitePutPersistsReportFields(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	session := sampleSession("s-2")
	session.Phase = domain.PhaseFinished
	pain := 42
	value := 43200.0
	session.PainScore = &pain
	session.EstimatedValue = &value
	session.Roadmap = &domain.Roadmap{
		TotalWeeks: 8,
		Phases: []domain.RoadmapPhase{
			{Number: 1, Name: "Multi-Platform Integration Hub", ImplementationWeeks: 8, EndWeek: 8, MatchScore: 64.2},
		},
	}

	if err := s.Put(ctx, session, time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	loaded, err := s.Get(ctx, "s-2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.PainScore == nil || *loaded.PainScore != 42 {
		t.Errorf("PainScore = %v", loaded.PainScore)
	}
	if loaded.EstimatedValue == nil || *loaded.EstimatedValue != 43200.0 {
		t.Errorf("EstimatedValue = %v", loaded.EstimatedValue)
	}
	if loaded.Roadmap == nil || len(loaded.Roadmap.Phases) != 1 {
		t.Fatalf("Roadmap lost: %v", loaded.Roadmap)
	}
	if loaded.Roadmap.Phases[0].MatchScore != 64.2 {
		t.Errorf("MatchScore = %v", loaded.Roadmap.Phases[0].MatchScore)
	}
}

func TestSQLiteGetUnknownSession(t *testing.T) {
	s := newTestSQLite(t)

	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteExpiredSessionIsGone(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	if err := s.Put(ctx, sampleSession("s-3"), -time.Second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := s.Get(ctx, "s-3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for expired session, got %v", err)
	}
}

func TestSQLitePutResetsRetentionWindow(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	session := sampleSession("s-4")
	if err := s.Put(ctx, session, -time.Second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, session, time.Hour); err != nil {
		t.Fatalf("Second Put failed: %v", err)
	}
	if _, err := s.Get(ctx, "s-4"); err != nil {
		t.Fatalf("Session should be live again after TTL reset: %v", err)
	}
}

func TestSQLiteCleanupExpired(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	if err := s.Put(ctx, sampleSession("live"), time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, sampleSession("dead-1"), -time.Second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, sampleSession("dead-2"), -time.Second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	deleted, err := s.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted sessions, got %d", deleted)
	}
	if _, err := s.Get(ctx, "live"); err != nil {
		t.Errorf("Live session should survive cleanup: %v", err)
	}
}

func TestSQLiteLastWriteWins(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	session := sampleSession("s-5")
	if err := s.Put(ctx, session, time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	session.Phase = domain.PhasePainPoints
	session.Append(domain.RoleAssistant, "What slows you down?")
	if err := s.Put(ctx, session, time.Hour); err != nil {
		t.Fatalf("Second Put failed: %v", err)
	}

	loaded, err := s.Get(ctx, "s-5")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Phase != domain.PhasePainPoints {
		t.Errorf("Second write should win, phase = %q", loaded.Phase)
	}
	if len(loaded.Messages) != 3 {
		t.Errorf("Expected 3 messages, got %d", len(loaded.Messages))
	}
}
