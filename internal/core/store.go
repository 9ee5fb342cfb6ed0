// Package core implements the positionlist engine: the ordered store of
// write-job entries and the bulk operations over it (selection, matrix
// replication, route ordering, area reconciliation, validation, and guarded
// serialization).
package core

import (
	"strings"

	"beamplan/internal/selection"
	"beamplan/internal/wafermap"
	"beamplan/pkg/domain"
)

// Positionlist owns an ordered sequence of entries bound to a wafer layout.
// It is not safe for concurrent mutation; callers sharing one list across
// goroutines must serialize access externally.
type Positionlist struct {
	wmap         wafermap.Map
	geometryFile string
	nextID       int
	entries      []domain.Entry
	metrics      MetricsRecorder
}

// Option configures a Positionlist at construction.
type Option func(*Positionlist)

// WithMetrics attaches an operation metrics recorder.
func WithMetrics(rec MetricsRecorder) Option {
	return func(p *Positionlist) {
		if rec != nil {
			p.metrics = rec
		}
	}
}

// New creates an empty positionlist bound to the named wafer layout.
func New(wafermapName string, opts ...Option) (*Positionlist, error) {
	m, err := wafermap.Lookup(wafermapName)
	if err != nil {
		return nil, err
	}
	p := &Positionlist{wmap: m, metrics: NopRecorder{}}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Restore rebuilds a positionlist from a persisted snapshot.
func Restore(snap domain.Snapshot, opts ...Option) (*Positionlist, error) {
	p, err := New(snap.Wafermap, opts...)
	if err != nil {
		return nil, err
	}
	if snap.GeometryFile != "" {
		if err := p.AssignFile(snap.GeometryFile); err != nil {
			return nil, err
		}
	}
	maxID := -1
	for _, e := range snap.Entries {
		if e.DoseFactor <= 0 {
			return nil, domain.InvalidParameterError{Param: "dose_factor", Reason: "must be positive"}
		}
		p.entries = append(p.entries, e.Clone())
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	p.nextID = maxID + 1
	if snap.NextID > p.nextID {
		p.nextID = snap.NextID
	}
	return p, nil
}

// Snapshot captures the list state for session persistence.
func (p *Positionlist) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Wafermap:     p.wmap.Name,
		GeometryFile: p.geometryFile,
		NextID:       p.nextID,
		Entries:      make([]domain.Entry, len(p.entries)),
	}
	for i, e := range p.entries {
		snap.Entries[i] = e.Clone()
	}
	return snap
}

// Len returns the number of entries.
func (p *Positionlist) Len() int { return len(p.entries) }

// Wafermap returns the name of the bound wafer layout.
func (p *Positionlist) Wafermap() string { return p.wmap.Name }

// GeometryFile returns the assigned geometry library path, or "".
func (p *Positionlist) GeometryFile() string { return p.geometryFile }

// Entries returns a copy of the entry sequence in store order.
func (p *Positionlist) Entries() []domain.Entry {
	out := make([]domain.Entry, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Clone()
	}
	return out
}

// Entry retrieves an entry by ID.
func (p *Positionlist) Entry(id int) (domain.Entry, bool) {
	for _, e := range p.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return domain.Entry{}, false
}

// IsAreaComplete reports whether every entry has a write field assigned.
func (p *Positionlist) IsAreaComplete() bool {
	for _, e := range p.entries {
		if e.Area == nil {
			return false
		}
	}
	return true
}

// AddOptions carries the optional attributes of a new entry.
type AddOptions struct {
	// Layers restricts which layers of the cell are written; empty means all.
	Layers []int
	// DoseFactor defaults to 1.0 when zero.
	DoseFactor float64
	Comment    string
}

// Add creates a new entry and appends it. IDs are assigned monotonically and
// never reused within a session, even after removals.
func (p *Positionlist) Add(cellRef string, pos domain.Vec, opts AddOptions) (domain.Entry, error) {
	if cellRef == "" {
		return domain.Entry{}, domain.InvalidParameterError{Param: "cell_ref", Reason: "must not be empty"}
	}
	dose := opts.DoseFactor
	if dose == 0 {
		dose = 1.0
	}
	if dose <= 0 {
		return domain.Entry{}, domain.InvalidParameterError{Param: "dose_factor", Reason: "must be positive"}
	}
	for _, l := range opts.Layers {
		if l < 0 {
			return domain.Entry{}, domain.InvalidParameterError{Param: "layers", Reason: "layer numbers must be non-negative"}
		}
	}
	e := domain.Entry{
		ID:         p.nextID,
		CellRef:    cellRef,
		Position:   pos,
		Layers:     domain.NormalizeLayers(opts.Layers),
		DoseFactor: dose,
		Comment:    opts.Comment,
	}
	p.nextID++
	p.entries = append(p.entries, e)
	return e.Clone(), nil
}

// Select returns the entries matching the expression, in store order. The
// empty expression selects every entry.
func (p *Positionlist) Select(expr string) ([]domain.Entry, error) {
	pred, err := p.compile(expr)
	if err != nil {
		return nil, err
	}
	var out []domain.Entry
	for _, e := range p.entries {
		if pred(e) {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Remove deletes the matching entries and returns how many were removed.
// Freed IDs are not reused.
func (p *Positionlist) Remove(expr string) (int, error) {
	pred, err := p.compile(expr)
	if err != nil {
		return 0, err
	}
	kept := p.entries[:0]
	removed := 0
	for _, e := range p.entries {
		if pred(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	return removed, nil
}

// AssignFile records the geometry library file the writer must open,
// relative to the writer's library root. The file's existence is checked by
// the writer at load time, not here.
func (p *Positionlist) AssignFile(path string) error {
	if path == "" {
		return domain.InvalidPathError{Path: path, Reason: "empty path"}
	}
	normalized := strings.ReplaceAll(path, "\\", "/")
	if strings.HasPrefix(normalized, "/") || hasDrivePrefix(path) {
		return domain.InvalidPathError{Path: path, Reason: "absolute paths are not allowed"}
	}
	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return domain.InvalidPathError{Path: path, Reason: "path traversal segments are not allowed"}
		}
	}
	p.geometryFile = path
	return nil
}

// hasDrivePrefix detects Windows drive-letter paths; the writer's library
// root is addressed relatively.
func hasDrivePrefix(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	c := path[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// compile turns a selection expression into a predicate; "" matches all.
func (p *Positionlist) compile(expr string) (selection.Predicate, error) {
	if strings.TrimSpace(expr) == "" {
		return func(domain.Entry) bool { return true }, nil
	}
	return selection.Compile(expr)
}

// apply runs fn over every matching entry in place and returns the match
// count.
func (p *Positionlist) apply(expr string, fn func(*domain.Entry) error) (int, error) {
	pred, err := p.compile(expr)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range p.entries {
		if !pred(p.entries[i]) {
			continue
		}
		if err := fn(&p.entries[i]); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
