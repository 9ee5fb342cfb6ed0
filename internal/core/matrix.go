package core

import (
	"time"

	"beamplan/pkg/domain"
)

// DoseChange transforms a source dose factor into the dose factor of a
// replicated entry. It must be a pure function.
type DoseChange func(float64) float64

// MatrixCopy replicates the selected entries onto a rows x cols grid. For
// every grid cell (r, c) except the origin, each source entry is copied to
// position + r*rowVec + c*colVec with doseChange applied to its dose factor.
// Copies get fresh IDs and no write field: they sit at new positions and must
// be reconciled independently. New entries are appended row-major, sources in
// selection order within each grid cell.
func (p *Positionlist) MatrixCopy(expr string, rows, cols int, rowVec, colVec domain.Vec, doseChange DoseChange) (created []domain.Entry, err error) {
	defer p.observe("matrix_copy", time.Now(), &err)

	if rows <= 0 || cols <= 0 {
		return nil, domain.InvalidGridError{Rows: rows, Cols: cols}
	}
	sources, err := p.Select(expr)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, domain.EmptySelectionError{Expression: expr}
	}
	if doseChange == nil {
		doseChange = func(f float64) float64 { return f }
	}

	// Transformed doses depend only on the source, so validate them before
	// mutating the sequence: a bad transform must not leave partial copies.
	doses := make([]float64, len(sources))
	for i, src := range sources {
		doses[i] = doseChange(src.DoseFactor)
		if doses[i] <= 0 {
			return nil, domain.InvalidParameterError{Param: "dose_change", Reason: "transformed dose factor must be positive"}
		}
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if r == 0 && c == 0 {
				continue
			}
			offset := rowVec.Scale(float64(r)).Add(colVec.Scale(float64(c)))
			for i, src := range sources {
				cp := src.Clone()
				cp.ID = p.nextID
				p.nextID++
				cp.Position = src.Position.Add(offset)
				cp.DoseFactor = doses[i]
				cp.Area = nil
				p.entries = append(p.entries, cp)
				created = append(created, cp.Clone())
			}
		}
	}
	return created, nil
}
