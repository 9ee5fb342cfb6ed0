// Package wafermap catalogs the wafer layouts known to the writer and the
// physical extent each one exposes for placement validation.
package wafermap

import (
	"math"
	"sort"

	"beamplan/pkg/domain"
)

// Shape distinguishes circular wafers from rectangular pieces.
type Shape int

const (
	// Disc is a circular wafer centered on the stage origin.
	Disc Shape = iota
	// Rect is a rectangular piece anchored at the stage origin.
	Rect
)

// Map describes one wafer layout. Extent is in millimeters: the bounding
// square of the disc, or the piece rectangle itself.
type Map struct {
	Name   string
	Shape  Shape
	Extent domain.Box
}

// Contains reports whether a stage position falls on the usable substrate.
func (m Map) Contains(p domain.Vec) bool {
	if !m.Extent.Contains(p.U, p.V) {
		return false
	}
	if m.Shape == Disc {
		cu := (m.Extent.MinU + m.Extent.MaxU) / 2
		cv := (m.Extent.MinV + m.Extent.MaxV) / 2
		r := m.Extent.Width() / 2
		return math.Hypot(p.U-cu, p.V-cv) <= r
	}
	return true
}

func disc(name string, diameter float64) Map {
	r := diameter / 2
	return Map{Name: name, Shape: Disc, Extent: domain.Box{MinU: -r, MinV: -r, MaxU: r, MaxV: r}}
}

func rect(name string, side float64) Map {
	return Map{Name: name, Shape: Rect, Extent: domain.Box{MaxU: side, MaxV: side}}
}

// The layouts installed on the writer. Names carry the instrument's .wlo
// extension.
var catalog = func() map[string]Map {
	maps := []Map{
		disc("3 inch left.wlo", 76.2),
		disc("4 inch left.wlo", 100),
		rect("4.8x4.8.wlo", 4.8),
		rect("10x10.wlo", 10),
		rect("12x12mm.wlo", 12),
		rect("20mm2.wlo", 20),
		rect("24mm2.wlo", 24),
		rect("50x50.wlo", 50),
		disc("Bare_4inch.wlo", 100),
		disc("Bare_6inch.wlo", 150),
		disc("Bare_8inch.wlo", 200),
		disc("DEFAULT.wlo", 150),
	}
	out := make(map[string]Map, len(maps))
	for _, m := range maps {
		out[m.Name] = m
	}
	return out
}()

// Lookup resolves a wafer layout by name.
func Lookup(name string) (Map, error) {
	m, ok := catalog[name]
	if !ok {
		return Map{}, domain.InvalidParameterError{Param: "wafermap", Reason: "unknown wafer layout " + name}
	}
	return m, nil
}

// Names lists the known layouts, sorted.
func Names() []string {
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
