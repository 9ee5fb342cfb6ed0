package core

import (
	"time"

	"beamplan/pkg/domain"
)

// Translate shifts every selected entry by d. Returns the number of entries
// moved.
func (p *Positionlist) Translate(d domain.Vec, expr string) (moved int, err error) {
	defer p.observe("translate", time.Now(), &err)

	return p.apply(expr, func(e *domain.Entry) error {
		e.Position = e.Position.Add(d)
		return nil
	})
}

// Pivot selects the rotation center for RotateAbout.
type Pivot int

const (
	// PivotOrigin rotates about the stage origin (0, 0).
	PivotOrigin Pivot = iota
	// PivotCorner rotates about the minimum-U/minimum-V corner of the
	// selection's positions.
	PivotCorner
	// PivotCenter rotates about the midpoint of the selection's position
	// bounding box.
	PivotCenter
	// PivotPoint rotates about an explicit point.
	PivotPoint
)

// RotateOptions configures a rotation pass.
type RotateOptions struct {
	Pivot Pivot
	// Point is the rotation center when Pivot is PivotPoint.
	Point domain.Vec
}

// RotateAbout rotates the positions of the selected entries by angle radians
// counter-clockwise around the configured pivot. Write fields are cleared on
// rotated entries and must be reconciled again. Returns the number of entries
// rotated.
func (p *Positionlist) RotateAbout(angle float64, expr string, opts RotateOptions) (rotated int, err error) {
	defer p.observe("rotate", time.Now(), &err)

	pivot, err := p.resolvePivot(expr, opts)
	if err != nil {
		return 0, err
	}
	return p.apply(expr, func(e *domain.Entry) error {
		e.Position = e.Position.RotateAbout(angle, pivot)
		e.Area = nil
		return nil
	})
}

func (p *Positionlist) resolvePivot(expr string, opts RotateOptions) (domain.Vec, error) {
	switch opts.Pivot {
	case PivotOrigin:
		return domain.Vec{}, nil
	case PivotPoint:
		return opts.Point, nil
	}
	sel, err := p.Select(expr)
	if err != nil {
		return domain.Vec{}, err
	}
	if len(sel) == 0 {
		return domain.Vec{}, domain.EmptySelectionError{Expression: expr}
	}
	bounds := domain.Box{
		MinU: sel[0].Position.U, MaxU: sel[0].Position.U,
		MinV: sel[0].Position.V, MaxV: sel[0].Position.V,
	}
	for _, e := range sel[1:] {
		bounds = bounds.Union(domain.Box{
			MinU: e.Position.U, MaxU: e.Position.U,
			MinV: e.Position.V, MaxV: e.Position.V,
		})
	}
	if opts.Pivot == PivotCorner {
		return domain.Vec{U: bounds.MinU, V: bounds.MinV}, nil
	}
	return domain.Vec{U: (bounds.MinU + bounds.MaxU) / 2, V: (bounds.MinV + bounds.MaxV) / 2}, nil
}

// SetDoseFactor assigns the dose factor to every selected entry.
func (p *Positionlist) SetDoseFactor(dose float64, expr string) (int, error) {
	if dose <= 0 {
		return 0, domain.InvalidParameterError{Param: "dose_factor", Reason: "must be positive"}
	}
	return p.apply(expr, func(e *domain.Entry) error {
		e.DoseFactor = dose
		return nil
	})
}

// SetLayers replaces the layer restriction of every selected entry. An empty
// list lifts the restriction.
func (p *Positionlist) SetLayers(layers []int, expr string) (int, error) {
	for _, l := range layers {
		if l < 0 {
			return 0, domain.InvalidParameterError{Param: "layers", Reason: "layer numbers must be non-negative"}
		}
	}
	normalized := domain.NormalizeLayers(layers)
	return p.apply(expr, func(e *domain.Entry) error {
		e.Layers = append([]int(nil), normalized...)
		if len(e.Layers) == 0 {
			e.Layers = nil
		}
		return nil
	})
}

// SetPosition moves the entry with the given ID to pos.
func (p *Positionlist) SetPosition(id int, pos domain.Vec) error {
	for i := range p.entries {
		if p.entries[i].ID == id {
			p.entries[i].Position = pos
			return nil
		}
	}
	return domain.InvalidParameterError{Param: "id", Reason: "no such entry"}
}

// SetComment assigns the comment to every selected entry.
func (p *Positionlist) SetComment(comment string, expr string) (int, error) {
	return p.apply(expr, func(e *domain.Entry) error {
		e.Comment = comment
		return nil
	})
}
