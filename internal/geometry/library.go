// Package geometry provides an in-memory cell library implementing the
// domain geometry port, plus a memoizing wrapper for repeated lookups.
package geometry

import (
	"fmt"
	"sort"

	"beamplan/pkg/domain"
)

// Library is an in-memory registry of cells with per-layer bounding boxes.
// It stands in for the writer's layout library during list construction and
// in tests.
type Library struct {
	cells map[string]map[int][]domain.Box
}

// NewLibrary returns an empty cell library.
func NewLibrary() *Library {
	return &Library{cells: make(map[string]map[int][]domain.Box)}
}

// AddCell registers an empty cell. Adding an existing cell is a no-op.
func (l *Library) AddCell(name string) {
	if _, ok := l.cells[name]; !ok {
		l.cells[name] = make(map[int][]domain.Box)
	}
}

// AddBox attaches geometry extent to a layer of a cell, creating the cell if
// needed.
func (l *Library) AddBox(cell string, layer int, box domain.Box) error {
	if layer < 0 {
		return domain.InvalidParameterError{Param: "layer", Reason: "must be non-negative"}
	}
	if !box.Valid() {
		return domain.InvalidParameterError{Param: "box", Reason: "degenerate bounding box"}
	}
	l.AddCell(cell)
	l.cells[cell][layer] = append(l.cells[cell][layer], box)
	return nil
}

// BoundingBox implements domain.Geometry.
func (l *Library) BoundingBox(cellRef string, layers []int) (domain.Box, error) {
	cell, ok := l.cells[cellRef]
	if !ok {
		return domain.Box{}, domain.UnknownCellError{CellRef: cellRef}
	}
	layers = domain.NormalizeLayers(layers)
	if layers == nil {
		for layer := range cell {
			layers = append(layers, layer)
		}
		sort.Ints(layers)
	}
	var bbox domain.Box
	first := true
	for _, layer := range layers {
		boxes, ok := cell[layer]
		if !ok {
			return domain.Box{}, fmt.Errorf("cell %q has no layer %d", cellRef, layer)
		}
		for _, b := range boxes {
			if first {
				bbox = b
				first = false
				continue
			}
			bbox = bbox.Union(b)
		}
	}
	if first {
		return domain.Box{}, fmt.Errorf("cell %q has no geometry on layers %v", cellRef, layers)
	}
	return bbox, nil
}

// Layers implements domain.Geometry.
func (l *Library) Layers(cellRef string) ([]int, error) {
	cell, ok := l.cells[cellRef]
	if !ok {
		return nil, domain.UnknownCellError{CellRef: cellRef}
	}
	out := make([]int, 0, len(cell))
	for layer := range cell {
		out = append(out, layer)
	}
	sort.Ints(out)
	return out, nil
}

var _ domain.Geometry = (*Library)(nil)
