package core

import (
	"fmt"

	"beamplan/pkg/domain"
)

// RulesEngine runs validation rules over a positionlist view and aggregates
// their findings.
type RulesEngine struct {
	rules []domain.Rule
}

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// NewDefaultRulesEngine builds an engine with the built-in check set.
func NewDefaultRulesEngine() *RulesEngine {
	e := NewRulesEngine()
	e.Register(FileAssignedRule{})
	e.Register(AreaCompleteRule{})
	e.Register(DoseFactorRule{})
	e.Register(LayerPresenceRule{})
	e.Register(WafermapBoundsRule{})
	return e
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule domain.Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules against the view.
func (e *RulesEngine) Evaluate(view domain.RuleView) domain.Result {
	var combined domain.Result
	for _, rule := range e.rules {
		combined.Merge(rule.Evaluate(view))
	}
	return combined
}

// Check runs the built-in validation rules and returns every finding without
// mutating the list. Serialization enforces the same blocking conditions as
// hard preconditions, so callers can surface warnings, fix the list, and
// write once the result is clean. A nil geometry adapter skips the lazy
// layer-presence check.
func (p *Positionlist) Check(geo domain.Geometry) domain.Result {
	return NewDefaultRulesEngine().Evaluate(ruleView{list: p, geo: geo})
}

type ruleView struct {
	list *Positionlist
	geo  domain.Geometry
}

func (v ruleView) Entries() []domain.Entry   { return v.list.Entries() }
func (v ruleView) Wafermap() string          { return v.list.wmap.Name }
func (v ruleView) GeometryFile() string      { return v.list.geometryFile }
func (v ruleView) Geometry() domain.Geometry { return v.geo }

func (v ruleView) WafermapContains(p domain.Vec) (bool, bool) {
	return v.list.wmap.Contains(p), true
}

// FileAssignedRule blocks serialization until a geometry file is assigned.
type FileAssignedRule struct{}

// Name implements domain.Rule.
func (FileAssignedRule) Name() string { return "file_assigned" }

// Evaluate implements domain.Rule.
func (FileAssignedRule) Evaluate(view domain.RuleView) domain.Result {
	if view.GeometryFile() != "" {
		return domain.Result{}
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "file_assigned",
		Severity: domain.SeverityBlock,
		Message:  "no geometry file assigned",
		EntryID:  -1,
	}}}
}

// AreaCompleteRule blocks serialization while entries lack a write field.
type AreaCompleteRule struct{}

// Name implements domain.Rule.
func (AreaCompleteRule) Name() string { return "area_complete" }

// Evaluate implements domain.Rule.
func (AreaCompleteRule) Evaluate(view domain.RuleView) domain.Result {
	var res domain.Result
	for _, e := range view.Entries() {
		if e.Area == nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "area_complete",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("entry %d (%s) has no write field", e.ID, e.CellRef),
				EntryID:  e.ID,
			})
		}
	}
	return res
}

// DoseFactorRule re-asserts the positive dose invariant over the whole list.
type DoseFactorRule struct{}

// Name implements domain.Rule.
func (DoseFactorRule) Name() string { return "dose_factor" }

// Evaluate implements domain.Rule.
func (DoseFactorRule) Evaluate(view domain.RuleView) domain.Result {
	var res domain.Result
	for _, e := range view.Entries() {
		if e.DoseFactor <= 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "dose_factor",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("entry %d has non-positive dose factor %g", e.ID, e.DoseFactor),
				EntryID:  e.ID,
			})
		}
	}
	return res
}

// LayerPresenceRule lazily checks that restricted layer sets reference
// layers present in the target cell. Skipped when no geometry adapter is
// attached to the pass.
type LayerPresenceRule struct{}

// Name implements domain.Rule.
func (LayerPresenceRule) Name() string { return "layer_presence" }

// Evaluate implements domain.Rule.
func (LayerPresenceRule) Evaluate(view domain.RuleView) domain.Result {
	geo := view.Geometry()
	if geo == nil {
		return domain.Result{}
	}
	var res domain.Result
	for _, e := range view.Entries() {
		if len(e.Layers) == 0 {
			continue
		}
		present, err := geo.Layers(e.CellRef)
		if err != nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "layer_presence",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("entry %d: %v", e.ID, err),
				EntryID:  e.ID,
			})
			continue
		}
		known := make(map[int]bool, len(present))
		for _, l := range present {
			known[l] = true
		}
		for _, l := range e.Layers {
			if !known[l] {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "layer_presence",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("entry %d: cell %q has no layer %d", e.ID, e.CellRef, l),
					EntryID:  e.ID,
				})
			}
		}
	}
	return res
}

// WafermapBoundsRule warns about entries placed outside the bound wafer
// layout. Out-of-bounds placement is never rejected: holders and custom
// mounts legitimately expose positions past the nominal extent.
type WafermapBoundsRule struct{}

// Name implements domain.Rule.
func (WafermapBoundsRule) Name() string { return "wafermap_bounds" }

// Evaluate implements domain.Rule.
func (WafermapBoundsRule) Evaluate(view domain.RuleView) domain.Result {
	var res domain.Result
	for _, e := range view.Entries() {
		inside, known := view.WafermapContains(e.Position)
		if !known || inside {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "wafermap_bounds",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("entry %d at (%.3f, %.3f) lies outside wafermap %s", e.ID, e.Position.U, e.Position.V, view.Wafermap()),
			EntryID:  e.ID,
		})
	}
	return res
}
