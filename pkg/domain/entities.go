// Package domain defines the positionlist entry model, value types, typed
// errors, and the ports implemented by geometry and persistence backends.
package domain

import (
	"math"
	"sort"
)

// Vec is a 2-D coordinate or displacement in the writer's U/V stage plane,
// expressed in millimeters.
type Vec struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// Add returns the vector sum v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{U: v.U + o.U, V: v.V + o.V}
}

// Sub returns the vector difference v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{U: v.U - o.U, V: v.V - o.V}
}

// Scale returns v scaled by f.
func (v Vec) Scale(f float64) Vec {
	return Vec{U: v.U * f, V: v.V * f}
}

// Dist returns the Euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 {
	return math.Hypot(v.U-o.U, v.V-o.V)
}

// RotateAbout rotates v by angle radians (counter-clockwise) around pivot.
func (v Vec) RotateAbout(angle float64, pivot Vec) Vec {
	sin, cos := math.Sincos(angle)
	d := v.Sub(pivot)
	return Vec{
		U: pivot.U + cos*d.U - sin*d.V,
		V: pivot.V + sin*d.U + cos*d.V,
	}
}

// Box is an axis-aligned bounding rectangle in cell coordinates (micrometers).
// It describes the write field of an entry or the extent of a cell's geometry.
type Box struct {
	MinU float64 `json:"min_u"`
	MinV float64 `json:"min_v"`
	MaxU float64 `json:"max_u"`
	MaxV float64 `json:"max_v"`
}

// Width returns the U extent of the box.
func (b Box) Width() float64 { return b.MaxU - b.MinU }

// Height returns the V extent of the box.
func (b Box) Height() float64 { return b.MaxV - b.MinV }

// Surface returns the area covered by the box.
func (b Box) Surface() float64 { return b.Width() * b.Height() }

// Valid reports whether the box is non-degenerate.
func (b Box) Valid() bool { return b.MaxU >= b.MinU && b.MaxV >= b.MinV }

// Contains reports whether the point (u, v) lies inside the box.
func (b Box) Contains(u, v float64) bool {
	return u >= b.MinU && u <= b.MaxU && v >= b.MinV && v <= b.MaxV
}

// Union returns the smallest box covering both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		MinU: math.Min(b.MinU, o.MinU),
		MinV: math.Min(b.MinV, o.MinV),
		MaxU: math.Max(b.MaxU, o.MaxU),
		MaxV: math.Max(b.MaxV, o.MaxV),
	}
}

// Entry is one scheduled write job: a reusable layout cell placed at a stage
// position with dose, layer, and write-field parameters.
//
// IDs are unique within a positionlist, assigned monotonically at creation,
// and never reused after deletion. Sequence order is a property of the
// positionlist, not of the ID value.
type Entry struct {
	ID         int     `json:"id"`
	CellRef    string  `json:"cell_ref"`
	Position   Vec     `json:"position"`
	Layers     []int   `json:"layers,omitempty"`
	DoseFactor float64 `json:"dose_factor"`
	Area       *Box    `json:"area,omitempty"`
	Comment    string  `json:"comment,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	cp := e
	if e.Layers != nil {
		cp.Layers = append([]int(nil), e.Layers...)
	}
	if e.Area != nil {
		area := *e.Area
		cp.Area = &area
	}
	return cp
}

// NormalizeLayers sorts and deduplicates a layer list. A nil or empty result
// means "all layers of the cell".
func NormalizeLayers(layers []int) []int {
	if len(layers) == 0 {
		return nil
	}
	out := append([]int(nil), layers...)
	sort.Ints(out)
	n := 0
	for i, l := range out {
		if i == 0 || l != out[i-1] {
			out[n] = l
			n++
		}
	}
	return out[:n]
}

// Snapshot captures the full state of a positionlist for persistence
// backends. Entry order is significant.
type Snapshot struct {
	Wafermap     string  `json:"wafermap"`
	GeometryFile string  `json:"geometry_file,omitempty"`
	NextID       int     `json:"next_id"`
	Entries      []Entry `json:"entries"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	cp := s
	cp.Entries = make([]Entry, len(s.Entries))
	for i, e := range s.Entries {
		cp.Entries[i] = e.Clone()
	}
	return cp
}
