// Package store keeps the best-effort snapshots of the portal: saved coach
// recommendations, execution records and the selected customer hand-off.
// Nothing in the portal reads them back; `pmp saved` lists them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/etnz/portal"
	_ "modernc.org/sqlite"
)

// Entry describes a saved snapshot.
type Entry struct {
	Key     string
	SavedAt time.Time
	Size    int
}

// SQLite is a key/value snapshot store in a single SQLite file. Saving a
// key again replaces its value.
type SQLite struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

var _ portal.Store = (*SQLite)(nil)

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			key      TEXT PRIMARY KEY,
			value    TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_saved ON snapshots(saved_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save stores v as JSON under key.
func (s *SQLite) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, value, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, saved_at = excluded.saved_at`,
		key, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Get returns the JSON saved under key, or portal.ErrNotFound.
func (s *SQLite) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", key, portal.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

// List returns the saved snapshots, most recent first.
func (s *SQLite) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, saved_at, length(value) FROM snapshots ORDER BY saved_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()
	var res []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.Key, &ms, &e.Size); err != nil {
			return nil, err
		}
		e.SavedAt = time.UnixMilli(ms)
		res = append(res, e)
	}
	return res, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

// Noop discards every snapshot.
type Noop struct{}

func (Noop) Save(context.Context, string, any) error { return nil }
