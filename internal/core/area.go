package core

import (
	"math"
	"time"

	"beamplan/internal/geometry"
	"beamplan/pkg/domain"
)

// UpdateArea fills the write field of every entry that has none, querying
// the geometry adapter for the cell's bounding box restricted to the entry's
// layers. Entries with an area keep it. Lookup failures are collected into a
// single GeometryLookupError; entries that resolved still get their area set.
func (p *Positionlist) UpdateArea(geo domain.Geometry) (err error) {
	defer p.observe("update_area", time.Now(), &err)

	if geo == nil {
		return domain.InvalidParameterError{Param: "geometry", Reason: "adapter must not be nil"}
	}
	cached := geometry.Cached(geo)
	var failures []domain.CellLookupFailure
	for i := range p.entries {
		e := &p.entries[i]
		if e.Area != nil {
			continue
		}
		box, lookupErr := cached.BoundingBox(e.CellRef, e.Layers)
		if lookupErr != nil {
			failures = append(failures, domain.CellLookupFailure{EntryID: e.ID, CellRef: e.CellRef, Err: lookupErr})
			continue
		}
		rounded := roundOutward(box)
		e.Area = &rounded
	}
	if len(failures) > 0 {
		return domain.GeometryLookupError{Failures: failures}
	}
	return nil
}

// SetArea assigns the box verbatim to every selected entry. Without
// overwrite, entries that already carry a write field are skipped, so
// intentional overrides survive a bulk pass. Returns how many entries were
// assigned.
func (p *Positionlist) SetArea(box domain.Box, expr string, overwrite bool) (int, error) {
	if !box.Valid() {
		return 0, domain.InvalidParameterError{Param: "area", Reason: "degenerate bounding box"}
	}
	changed := 0
	_, err := p.apply(expr, func(e *domain.Entry) error {
		if e.Area != nil && !overwrite {
			return nil
		}
		b := box
		e.Area = &b
		changed++
		return nil
	})
	return changed, err
}

// roundOutward pads each coordinate away from zero at 0.01 precision; the
// writer rejects write fields tighter than the cell extent.
func roundOutward(b domain.Box) domain.Box {
	return domain.Box{
		MinU: awayFromZero(b.MinU),
		MinV: awayFromZero(b.MinV),
		MaxU: awayFromZero(b.MaxU),
		MaxV: awayFromZero(b.MaxV),
	}
}

func awayFromZero(x float64) float64 {
	const precision = 100
	if x == 0 {
		return 0
	}
	return math.Copysign(math.Ceil(math.Abs(x)*precision)/precision, x)
}
