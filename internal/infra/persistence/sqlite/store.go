// Package sqlite persists positionlist sessions in a local SQLite file, one
// row per named session holding the snapshot as a JSON blob.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"beamplan/pkg/domain"
)

var _ domain.SessionStore = (*Store)(nil)

// Store is a SQLite-backed session store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the session database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "beamplan.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save upserts the snapshot under the session name.
func (s *Store) Save(ctx context.Context, name string, snap domain.Snapshot) error {
	if name == "" {
		return domain.InvalidParameterError{Param: "session", Reason: "name must not be empty"}
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", name, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (name, payload) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`,
		name, payload); err != nil {
		return fmt.Errorf("save session %q: %w", name, err)
	}
	return nil
}

// Load retrieves the snapshot stored under the session name.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, domain.InvalidParameterError{Param: "session", Reason: "unknown session " + name}
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load session %q: %w", name, err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode session %q: %w", name, err)
	}
	return snap, nil
}

// List returns the stored session names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sessions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
