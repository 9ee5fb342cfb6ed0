package core

import (
	"time"

	"beamplan/pkg/domain"
)

// Per-entry overhead in seconds: stage settle, write field alignment, and
// column blanking around each exposure.
const entryOverheadSeconds = 2.5

// Stage travel speed factor: seconds per millimeter of head travel,
// including acceleration ramps.
const travelSecondsPerMM = 5.5 / 10

// TravelDistance returns the total write-head travel in millimeters for the
// current entry order, from the stage origin through every position.
func (p *Positionlist) TravelDistance() float64 {
	total := 0.0
	prev := domain.Vec{}
	for _, e := range p.entries {
		total += prev.Dist(e.Position)
		prev = e.Position
	}
	return total
}

// EstimateWriteTime predicts the wall-clock duration of writing the list.
// beamCurrent is in amperes, areaDose in µC/cm². Exposure time scales each
// entry's write field surface by its dose factor; travel time follows the
// current entry order, so running ShortSort first tightens the estimate.
// Every entry needs a write field, otherwise IncompleteAreaError is returned.
func (p *Positionlist) EstimateWriteTime(beamCurrent, areaDose float64) (time.Duration, error) {
	if beamCurrent <= 0 {
		return 0, domain.InvalidParameterError{Param: "beam_current", Reason: "must be positive"}
	}
	if areaDose <= 0 {
		return 0, domain.InvalidParameterError{Param: "area_dose", Reason: "must be positive"}
	}
	var missing []int
	for _, e := range p.entries {
		if e.Area == nil {
			missing = append(missing, e.ID)
		}
	}
	if len(missing) > 0 {
		return 0, domain.IncompleteAreaError{EntryIDs: missing}
	}

	seconds := entryOverheadSeconds * float64(len(p.entries))
	// Surface is in µm²; 1e-14 converts dose·area/current into seconds
	// with the dose in µC/cm².
	for _, e := range p.entries {
		seconds += e.Area.Surface() * 1e-14 * areaDose * e.DoseFactor / beamCurrent
	}
	seconds += p.TravelDistance() * travelSecondsPerMM
	return time.Duration(seconds * float64(time.Second)), nil
}
