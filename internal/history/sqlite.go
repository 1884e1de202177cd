package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore manages SQLite persistence for conversation turns
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the history database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// NewSQLiteStoreWithDB creates a store with an existing database connection.
// This allows sharing the connection with other stores.
func NewSQLiteStoreWithDB(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate creates the turns table if it doesn't exist
func (s *SQLiteStore) migrate() error {
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
	`
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create turns table: %w", err)
	}

	createIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_turns_thread_id
		ON turns(thread_id);
	`
	if _, err := s.db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Read returns all turns for a thread ordered by arrival
func (s *SQLiteStore) Read(ctx context.Context, threadID string) ([]Turn, error) {
	query := `
		SELECT question, answer, created_at
		FROM turns
		WHERE thread_id = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("read thread %s: %w: %w", threadID, ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var turns []Turn
	for rows.Next() {
		var turn Turn
		var createdAt string
		if err := rows.Scan(&turn.Question, &turn.Answer, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn for thread %s: %w: %w", threadID, ErrUnavailable, err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			turn.CreatedAt = parsed
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns for thread %s: %w: %w", threadID, ErrUnavailable, err)
	}

	return turns, nil
}

// Append records a new turn at the end of the thread's history
func (s *SQLiteStore) Append(ctx context.Context, threadID string, turn Turn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	insertSQL := `
		INSERT INTO turns (thread_id, question, answer, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, insertSQL, threadID, turn.Question, turn.Answer, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append turn to thread %s: %w: %w", threadID, ErrUnavailable, err)
	}

	return nil
}

// Ping verifies the store is reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping history store: %w: %w", ErrUnavailable, err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
