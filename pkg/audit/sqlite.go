package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteSink persists audit entries to an append-only SQLite table.
type SQLiteSink struct {
	db     *sql.DB
	ownsDB bool
}

var (
	_ Sink   = (*SQLiteSink)(nil)
	_ Source = (*SQLiteSink)(nil)
)

// NewSQLiteSink opens (or creates) the audit database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteSink{db: db, ownsDB: true}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return s, nil
}

// NewSQLiteSinkFromDB uses an existing connection, which the caller keeps
// ownership of. Works with any database/sql SQLite driver.
func NewSQLiteSinkFromDB(db *sql.DB) (*SQLiteSink, error) {
	s := &SQLiteSink{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_entries (
		id INTEGER PRIMARY KEY,
		action TEXT NOT NULL,
		actor TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		details TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_entries_action ON audit_entries(action);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts entry. An id that already exists is rejected by the primary
// key, so rows are never overwritten.
func (s *SQLiteSink) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_entries (id, action, actor, timestamp, details) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Action.String(), entry.Actor, entry.Timestamp.UTC().Format(time.RFC3339Nano), entry.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry %d: %w", entry.ID, err)
	}
	return nil
}

// Entries returns every persisted entry in ascending id order.
func (s *SQLiteSink) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, actor, timestamp, details FROM audit_entries ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			action string
			ts     string
		)
		if err := rows.Scan(&e.ID, &action, &e.Actor, &ts, &e.Details); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if e.Action, err = ParseAction(action); err != nil {
			return nil, fmt.Errorf("audit entry %d: %w", e.ID, err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("audit entry %d: failed to parse timestamp: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of persisted entries.
func (s *SQLiteSink) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return n, nil
}

// Close releases the database if the sink opened it.
func (s *SQLiteSink) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
