// Package postgres persists positionlist sessions in a Postgres table,
// mirroring the SQLite store's layout for deployments with a shared lab
// database.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"beamplan/pkg/domain"
)

var _ domain.SessionStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/beamplan?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a Postgres-backed session store.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres session store using the provided DSN (falls back
// to defaultDSN), verifies connectivity, and ensures the sessions table
// exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sessions (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure sessions table: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
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
		`INSERT INTO sessions (name, payload) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload`,
		name, payload); err != nil {
		return fmt.Errorf("save session %q: %w", name, err)
	}
	return nil
}

// Load retrieves the snapshot stored under the session name.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE name = $1`, name).Scan(&payload)
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
