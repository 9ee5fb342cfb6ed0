package core

import (
	"testing"

	"beamplan/pkg/domain"
)

func violationsByRule(res domain.Result, rule string) []domain.Violation {
	var out []domain.Violation
	for _, v := range res.Violations {
		if v.Rule == rule {
			out = append(out, v)
		}
	}
	return out
}

func TestCheckCleanList(t *testing.T) {
	p := completeList(t)
	res := p.Check(nil)
	if len(res.Violations) != 0 {
		t.Fatalf("violations = %+v, want none", res.Violations)
	}
}

func TestCheckMissingFileBlocks(t *testing.T) {
	p := newTestList(t)
	res := p.Check(nil)
	found := violationsByRule(res, "file_assigned")
	if len(found) != 1 || found[0].Severity != domain.SeverityBlock {
		t.Fatalf("file_assigned = %+v", found)
	}
	if !res.HasBlocking() {
		t.Fatal("result should block")
	}
}

func TestCheckMissingAreasBlockPerEntry(t *testing.T) {
	p := newTestList(t)
	if err := p.AssignFile("chip.gds"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	mustAdd(t, p, "ring", domain.Vec{}, AddOptions{})
	mustAdd(t, p, "pad", domain.Vec{U: 1}, AddOptions{})

	res := p.Check(nil)
	found := violationsByRule(res, "area_complete")
	if len(found) != 2 {
		t.Fatalf("area_complete = %+v, want one per entry", found)
	}
	for _, v := range found {
		if v.Severity != domain.SeverityBlock {
			t.Fatalf("severity = %v, want block", v.Severity)
		}
	}
}

func TestCheckOutOfBoundsWarns(t *testing.T) {
	p := completeList(t)
	// 4 inch disc: radius 50 mm. The square corner (45, 45) is off the disc.
	mustAdd(t, p, "far", domain.Vec{U: 45, V: 45}, AddOptions{})
	if _, err := p.SetArea(domain.Box{MaxU: 1, MaxV: 1}, "", false); err != nil {
		t.Fatalf("set area: %v", err)
	}

	res := p.Check(nil)
	found := violationsByRule(res, "wafermap_bounds")
	if len(found) != 1 || found[0].Severity != domain.SeverityWarn {
		t.Fatalf("wafermap_bounds = %+v", found)
	}
	// Warnings alone never block.
	if res.HasBlocking() {
		t.Fatalf("warn-only result blocks: %+v", res.Violations)
	}
}

func TestCheckLayerPresence(t *testing.T) {
	p := completeList(t)
	mustAdd(t, p, "ring", domain.Vec{}, AddOptions{Layers: []int{7}})
	if _, err := p.SetArea(domain.Box{MaxU: 1, MaxV: 1}, "", false); err != nil {
		t.Fatalf("set area: %v", err)
	}

	// ring only has layers 0 and 2 in the test library.
	res := p.Check(testGeometry(t))
	found := violationsByRule(res, "layer_presence")
	if len(found) == 0 {
		t.Fatalf("violations = %+v, want layer_presence finding", res.Violations)
	}
	for _, v := range found {
		if v.Severity != domain.SeverityBlock {
			t.Fatalf("severity = %v, want block", v.Severity)
		}
	}
}

func TestCheckLayerPresenceSkippedWithoutGeometry(t *testing.T) {
	p := completeList(t)
	mustAdd(t, p, "ring", domain.Vec{}, AddOptions{Layers: []int{7}})
	if _, err := p.SetArea(domain.Box{MaxU: 1, MaxV: 1}, "", false); err != nil {
		t.Fatalf("set area: %v", err)
	}

	res := p.Check(nil)
	if found := violationsByRule(res, "layer_presence"); len(found) != 0 {
		t.Fatalf("layer_presence ran without an adapter: %+v", found)
	}
}

func TestRulesEngineCustomRule(t *testing.T) {
	e := NewRulesEngine()
	e.Register(FileAssignedRule{})

	p := newTestList(t)
	res := e.Evaluate(ruleView{list: p})
	if len(res.Violations) != 1 {
		t.Fatalf("violations = %+v", res.Violations)
	}
}
