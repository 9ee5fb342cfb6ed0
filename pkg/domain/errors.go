package domain

import (
	"fmt"
	"strings"
)

// InvalidParameterError reports a bad constructor or transform argument.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// SelectionSyntaxError reports a malformed selection expression.
type SelectionSyntaxError struct {
	Expression string
	Token      string
	Pos        int
	Reason     string
}

func (e SelectionSyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("selection %q: %s at offset %d", e.Expression, e.Reason, e.Pos)
	}
	return fmt.Sprintf("selection %q: %s at %q (offset %d)", e.Expression, e.Reason, e.Token, e.Pos)
}

// UnknownAttributeError reports a selection or tabulation attribute outside
// the recognized vocabulary.
type UnknownAttributeError struct {
	Name string
}

func (e UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q", e.Name)
}

// EmptySelectionError reports a replication request whose selection matched
// no entries.
type EmptySelectionError struct {
	Expression string
}

func (e EmptySelectionError) Error() string {
	return fmt.Sprintf("selection %q matched no entries", e.Expression)
}

// InvalidGridError reports a non-positive matrix-copy grid.
type InvalidGridError struct {
	Rows, Cols int
}

func (e InvalidGridError) Error() string {
	return fmt.Sprintf("invalid grid %dx%d: rows and columns must be positive", e.Rows, e.Cols)
}

// UnknownCellError reports a cell reference the geometry library cannot
// resolve.
type UnknownCellError struct {
	CellRef string
}

func (e UnknownCellError) Error() string {
	return fmt.Sprintf("cell %q not found in geometry library", e.CellRef)
}

// CellLookupFailure is one per-entry failure collected during an area pass.
type CellLookupFailure struct {
	EntryID int
	CellRef string
	Err     error
}

// GeometryLookupError aggregates per-entry geometry failures from a bulk
// area pass. Entries that resolved successfully keep their result.
type GeometryLookupError struct {
	Failures []CellLookupFailure
}

func (e GeometryLookupError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("entry %d (%s): %v", f.EntryID, f.CellRef, f.Err)
	}
	return fmt.Sprintf("geometry lookup failed for %d entries: %s", len(e.Failures), strings.Join(parts, "; "))
}

// IncompleteAreaError blocks serialization while entries lack a write field.
type IncompleteAreaError struct {
	EntryIDs []int
}

func (e IncompleteAreaError) Error() string {
	return fmt.Sprintf("%d entries have no area assigned (ids %v); run UpdateArea or SetArea first", len(e.EntryIDs), e.EntryIDs)
}

// NoFileAssignedError blocks serialization until a geometry file path is
// assigned.
type NoFileAssignedError struct{}

func (e NoFileAssignedError) Error() string {
	return "no geometry file assigned; call AssignFile first"
}

// InvalidPathError reports a geometry file path that is absolute or escapes
// the writer's library root.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e InvalidPathError) Error() string {
	return fmt.Sprintf("invalid geometry file path %q: %s", e.Path, e.Reason)
}
