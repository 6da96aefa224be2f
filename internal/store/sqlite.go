package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/auditflow/auditflow/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes session writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed session store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS intake_sessions (
		session_id TEXT PRIMARY KEY,
		phase TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		extracted_json TEXT NOT NULL,
		roadmap_json TEXT,
		pain_score INTEGER,
		estimated_value REAL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_intake_sessions_expires ON intake_sessions(expires_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get retrieves a live session snapshot by id.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, phase, messages_json, extracted_json, roadmap_json,
		       pain_score, estimated_value, created_at, updated_at
		FROM intake_sessions WHERE session_id = ? AND expires_at > ?`

	row := s.db.QueryRowContext(ctx, query, sessionID, time.Now().Unix())

	var (
		session        domain.Session
		messagesJSON   string
		extractedJSON  string
		roadmapJSON    sql.NullString
		painScore      sql.NullInt64
		estimatedValue sql.NullFloat64
		createdAt      int64
		updatedAt      int64
	)

	err := row.Scan(
		&session.SessionID, &session.Phase, &messagesJSON, &extractedJSON,
		&roadmapJSON, &painScore, &estimatedValue, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(messagesJSON), &session.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if err := json.Unmarshal([]byte(extractedJSON), &session.ExtractedData); err != nil {
		return nil, fmt.Errorf("decode extracted data: %w", err)
	}
	if session.ExtractedData == nil {
		session.ExtractedData = make(map[domain.Phase]domain.Facts)
	}
	if roadmapJSON.Valid {
		var roadmap domain.Roadmap
		if err := json.Unmarshal([]byte(roadmapJSON.String), &roadmap); err != nil {
			return nil, fmt.Errorf("decode roadmap: %w", err)
		}
		session.Roadmap = &roadmap
	}
	if painScore.Valid {
		v := int(painScore.Int64)
		session.PainScore = &v
	}
	if estimatedValue.Valid {
		v := estimatedValue.Float64
		session.EstimatedValue = &v
	}
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	return &session, nil
}

// Put replaces the session snapshot and resets its retention window.
// Retries with exponential backoff when the database is briefly locked.
func (s *SQLiteStore) Put(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.putOnce(ctx, session, ttl)
		if err == nil {
			return nil
		}

		if isSQLiteConflict(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // 100ms, 200ms, 400ms
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return fmt.Errorf("put session %s: %w", session.SessionID, err)
	}

	return nil
}

func (s *SQLiteStore) putOnce(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	extractedJSON, err := json.Marshal(session.ExtractedData)
	if err != nil {
		return fmt.Errorf("encode extracted data: %w", err)
	}

	var roadmapJSON any
	if session.Roadmap != nil {
		b, err := json.Marshal(session.Roadmap)
		if err != nil {
			return fmt.Errorf("encode roadmap: %w", err)
		}
		roadmapJSON = string(b)
	}

	var painScore, estimatedValue any
	if session.PainScore != nil {
		painScore = *session.PainScore
	}
	if session.EstimatedValue != nil {
		estimatedValue = *session.EstimatedValue
	}

	now := time.Now()
	query := `
		INSERT INTO intake_sessions (
			session_id, phase, messages_json, extracted_json, roadmap_json,
			pain_score, estimated_value, created_at, updated_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			phase = excluded.phase,
			messages_json = excluded.messages_json,
			extracted_json = excluded.extracted_json,
			roadmap_json = excluded.roadmap_json,
			pain_score = excluded.pain_score,
			estimated_value = excluded.estimated_value,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`

	_, err = s.db.ExecContext(ctx, query,
		session.SessionID, string(session.Phase), string(messagesJSON), string(extractedJSON),
		roadmapJSON, painScore, estimatedValue,
		session.CreatedAt.Unix(), now.Unix(), now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// CleanupExpired removes sessions past their retention window.
func (s *SQLiteStore) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM intake_sessions WHERE expires_at <= ?`
	result, err := s.db.ExecContext(ctx, query, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// isSQLiteConflict reports whether the error is a SQLITE_BUSY or
// "database is locked" error, both of which warrant a retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
