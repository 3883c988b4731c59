package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// SQLiteStore keeps every run in a single SQLite database.
type SQLiteStore struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLite opens (and migrates) the trace database at path.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLiteStore{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Location returns a URI-style reference to the run inside the database.
func (s *SQLiteStore) Location(runID string) string {
	return s.path + "#" + runID
}

func (s *SQLiteStore) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Events},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1Events = `
CREATE TABLE IF NOT EXISTS trace_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	ts TEXT NOT NULL,
	role TEXT NOT NULL,
	sender TEXT NOT NULL,
	content TEXT NOT NULL,
	metadata TEXT
);

CREATE INDEX IF NOT EXISTS idx_trace_events_run_id ON trace_events(run_id);
`

// Append inserts the events in a single transaction.
func (s *SQLiteStore) Append(ctx context.Context, runID string, events []models.TraceEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := s.Location(runID)
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return loc, fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trace_events (run_id, ts, role, sender, content, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return loc, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		var meta sql.NullString
		if len(ev.Metadata) > 0 {
			raw, err := json.Marshal(ev.Metadata)
			if err != nil {
				tx.Rollback()
				return loc, fmt.Errorf("encode metadata: %w", err)
			}
			meta = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, formatTime(ev.Timestamp), string(ev.Role), ev.Sender, ev.Content, meta); err != nil {
			tx.Rollback()
			return loc, fmt.Errorf("insert trace event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return loc, fmt.Errorf("commit trace events: %w", err)
	}
	return loc, nil
}

// Load returns the run's events ordered by insertion.
func (s *SQLiteStore) Load(ctx context.Context, runID string) ([]models.TraceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT ts, role, sender, content, metadata
		FROM trace_events
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trace events: %w", err)
	}
	defer rows.Close()

	var events []models.TraceEvent
	for rows.Next() {
		var (
			ts, role string
			ev       models.TraceEvent
			meta     sql.NullString
		)
		if err := rows.Scan(&ts, &role, &ev.Sender, &ev.Content, &meta); err != nil {
			return nil, fmt.Errorf("scan trace event: %w", err)
		}
		if ev.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		ev.Role = models.Role(role)
		if meta.Valid {
			if err := json.Unmarshal([]byte(meta.String), &ev.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace events: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
