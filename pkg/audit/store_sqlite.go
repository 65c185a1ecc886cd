package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SQLiteStore is an append-only audit event store for lite-mode
// deployments without Postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the store and runs migrations.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSQLiteStore opens (or creates) the backing database file.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS audit_events (
        id TEXT PRIMARY KEY,
        type TEXT NOT NULL,
        action TEXT NOT NULL,
        account TEXT,
        timestamp DATETIME NOT NULL,
        metadata JSON
    );
    CREATE INDEX IF NOT EXISTS idx_audit_events_account ON audit_events(account, timestamp);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Record implements Logger by appending the event. Events are never
// updated or deleted.
func (s *SQLiteStore) Record(ctx context.Context, eventType EventType, action, account string, metadata map[string]any) error {
	var metadataJSON []byte
	if metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO audit_events (id, type, action, account, timestamp, metadata)
        VALUES (?, ?, ?, ?, ?, ?)
    `, uuid.New().String(), string(eventType), action, account, time.Now().UTC(), metadataJSON)
	return err
}

// List returns the most recent events for an account, newest first.
func (s *SQLiteStore) List(ctx context.Context, account string, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, type, action, account, timestamp, metadata
        FROM audit_events
        WHERE account = ?
        ORDER BY timestamp DESC
        LIMIT ?
    `, account, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		var eventType string
		var metadataJSON []byte
		if err := rows.Scan(&e.ID, &eventType, &e.Action, &e.Account, &e.Timestamp, &metadataJSON); err != nil {
			return nil, err
		}
		e.Type = EventType(eventType)
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
