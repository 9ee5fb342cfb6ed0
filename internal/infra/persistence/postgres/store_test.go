package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"beamplan/pkg/domain"
)

func testStore(t *testing.T) (*Store, *stubConn) {
	t.Helper()
	db, conn := newStubDB(t)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)

	s, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, conn
}

func testSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Wafermap:     "4 inch left.wlo",
		GeometryFile: "chip.gds",
		NextID:       2,
		Entries: []domain.Entry{
			{ID: 0, CellRef: "ring", Position: domain.Vec{U: 1, V: 2}, DoseFactor: 1.0},
			{ID: 1, CellRef: "pad", Position: domain.Vec{U: -1, V: 0}, DoseFactor: 1.5, Comment: "probe"},
		},
	}
}

func TestNewStoreEnsuresTable(t *testing.T) {
	_, conn := testStore(t)
	found := false
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS SESSIONS") {
			found = true
		}
	}
	if !found {
		t.Fatalf("sessions DDL missing, execs: %v", conn.execs)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	want := testSnapshot()
	if err := s.Save(ctx, "run-a", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "run-a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Wafermap != want.Wafermap || got.NextID != want.NextID || len(got.Entries) != 2 {
		t.Fatalf("snapshot = %+v", got)
	}
	if got.Entries[1].Comment != "probe" {
		t.Fatalf("entry = %+v", got.Entries[1])
	}
}

func TestSaveOverwrites(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	snap := testSnapshot()
	if err := s.Save(ctx, "run-a", snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap.NextID = 42
	if err := s.Save(ctx, "run-a", snap); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, err := s.Load(ctx, "run-a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.NextID != 42 {
		t.Fatalf("next id = %d, want 42", got.NextID)
	}
}

func TestLoadUnknownSession(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.Load(context.Background(), "nope")
	var paramErr domain.InvalidParameterError
	if !errors.As(err, &paramErr) {
		t.Fatalf("err = %v, want InvalidParameterError", err)
	}
}

func TestListSorted(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha"} {
		if err := s.Save(ctx, name, testSnapshot()); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("names = %v", names)
	}
}

func TestNewStorePingFailure(t *testing.T) {
	db, conn := newStubDB(t)
	conn.failPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatal("want ping failure")
	}
}

// --- stub database/sql driver ---

var stubSeq uint64

func newStubDB(t *testing.T) (*sql.DB, *stubConn) {
	t.Helper()
	conn := &stubConn{sessions: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", atomic.AddUint64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		t.Fatalf("open stub: %v", err)
	}
	return db, conn
}

type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

type stubConn struct {
	sessions map[string][]byte
	execs    []string
	failPing bool
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, fmt.Errorf("not implemented") }

func (c *stubConn) Ping(context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	upper := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(upper, "INSERT INTO SESSIONS"):
		name := args[0].Value.(string)
		payload := append([]byte(nil), args[1].Value.([]byte)...)
		c.sessions[name] = payload
		return driver.RowsAffected(1), nil
	}
	return nil, fmt.Errorf("unexpected exec: %s", query)
}

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	upper := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.Contains(upper, "SELECT PAYLOAD"):
		name := args[0].Value.(string)
		payload, ok := c.sessions[name]
		if !ok {
			return &stubRows{columns: []string{"payload"}}, nil
		}
		return &stubRows{columns: []string{"payload"}, rows: [][]driver.Value{{payload}}}, nil
	case strings.Contains(upper, "SELECT NAME"):
		names := make([]string, 0, len(c.sessions))
		for name := range c.sessions {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]driver.Value, len(names))
		for i, name := range names {
			rows[i] = []driver.Value{name}
		}
		return &stubRows{columns: []string{"name"}, rows: rows}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", query)
}

type stubRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *stubRows) Columns() []string { return r.columns }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}
