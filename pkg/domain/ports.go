package domain

import "context"

// Geometry resolves axis-aligned bounding boxes from the loaded layout
// library. Implementations are read-only and queried synchronously; they may
// cache lookups but are not required to.
type Geometry interface {
	// BoundingBox returns the bounding box of the cell, restricted to the
	// given layers. An empty layer list means the full cell. It returns
	// UnknownCellError when the cell does not exist and an error when a
	// requested layer is absent from the cell.
	BoundingBox(cellRef string, layers []int) (Box, error)
	// Layers lists the layers present in the cell, sorted ascending.
	Layers(cellRef string) ([]int, error)
}

// RuleView provides read-only access to positionlist state for rule
// evaluation.
type RuleView interface {
	Entries() []Entry
	Wafermap() string
	// WafermapContains reports whether the position falls on the usable
	// substrate of the bound wafermap. The second return is false when the
	// layout's extent is unknown.
	WafermapContains(p Vec) (inside bool, known bool)
	GeometryFile() string
	// Geometry returns the adapter for lazy layer checks, or nil when no
	// library is attached to the validation pass.
	Geometry() Geometry
}

// Rule is one validation check executed during a two-phase validation pass.
type Rule interface {
	Name() string
	Evaluate(view RuleView) Result
}

// SessionStore persists positionlist snapshots between sessions.
type SessionStore interface {
	Save(ctx context.Context, name string, snap Snapshot) error
	Load(ctx context.Context, name string) (Snapshot, error)
	List(ctx context.Context) ([]string, error)
}
