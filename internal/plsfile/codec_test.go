package plsfile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"beamplan/pkg/domain"
)

func testDocument() Document {
	area := domain.Box{MinU: -10.25, MinV: -5.5, MaxU: 10.25, MaxV: 5.5}
	return Document{
		Wafermap:     "4 inch left.wlo",
		GeometryFile: "designs/chip_a.gds",
		Entries: []domain.Entry{
			{ID: 0, CellRef: "ring", Position: domain.Vec{U: 1.5, V: -2.25}, DoseFactor: 1.0, Area: &area},
			{ID: 1, CellRef: "grating", Position: domain.Vec{U: 0, V: 0}, Layers: []int{0, 2}, DoseFactor: 1.3, Area: &area, Comment: "sweep, step 2"},
		},
	}
}

func TestEncodeSections(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testDocument()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := buf.String()

	for _, want := range []string{
		"[HEADER]",
		"FORMAT=IUVCLADF",
		"WAFERLAYOUT=4 inch left.wlo",
		"GDSFILE=designs/chip_a.gds",
		"ENTRIES=2",
		"[COLUMNS]",
		"[DATA]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	doc := testDocument()
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Wafermap != doc.Wafermap {
		t.Fatalf("wafermap = %q, want %q", got.Wafermap, doc.Wafermap)
	}
	if got.GeometryFile != doc.GeometryFile {
		t.Fatalf("geometry file = %q, want %q", got.GeometryFile, doc.GeometryFile)
	}
	if len(got.Entries) != len(doc.Entries) {
		t.Fatalf("entries = %d, want %d", len(got.Entries), len(doc.Entries))
	}
	for i, want := range doc.Entries {
		e := got.Entries[i]
		if e.ID != want.ID || e.CellRef != want.CellRef || e.Comment != want.Comment {
			t.Fatalf("entry %d = %+v, want %+v", i, e, want)
		}
		if e.Position != want.Position || e.DoseFactor != want.DoseFactor {
			t.Fatalf("entry %d = %+v, want %+v", i, e, want)
		}
		if len(e.Layers) != len(want.Layers) {
			t.Fatalf("entry %d layers = %v, want %v", i, e.Layers, want.Layers)
		}
		if (e.Area == nil) != (want.Area == nil) {
			t.Fatalf("entry %d area presence mismatch", i)
		}
		if e.Area != nil && *e.Area != *want.Area {
			t.Fatalf("entry %d area = %+v, want %+v", i, *e.Area, *want.Area)
		}
	}
}

// Values that do not land on a fixed decimal grid must survive a write/read
// cycle bit-exact.
func TestRoundTripExactValues(t *testing.T) {
	area := domain.Box{MinU: -0.005, MinV: 0.125, MaxU: 0.005, MaxV: 33.333333333333336}
	doc := Document{
		Wafermap:     "4 inch left.wlo",
		GeometryFile: "chip.gds",
		Entries: []domain.Entry{
			{ID: 0, CellRef: "ring", Position: domain.Vec{U: 1.23456789, V: -0.000001}, DoseFactor: 1.0000001, Area: &area},
		},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(got.Entries))
	}
	e := got.Entries[0]
	if e.Position != doc.Entries[0].Position || e.DoseFactor != doc.Entries[0].DoseFactor {
		t.Fatalf("entry = %+v, want %+v", e, doc.Entries[0])
	}
	if e.Area == nil || *e.Area != area {
		t.Fatalf("area = %+v, want %+v", e.Area, area)
	}
}

// The comment of entry 1 contains a comma; CSV quoting must preserve it.
func TestRoundTripCommaInComment(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testDocument()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Entries[1].Comment != "sweep, step 2" {
		t.Fatalf("comment = %q", got.Entries[1].Comment)
	}
}

// A quoted comment may hold a newline followed by a bracket; the data block
// must not be cut short at that line.
func TestRoundTripNewlineInComment(t *testing.T) {
	doc := testDocument()
	doc.Entries[0].Comment = "field A\n[redo] after develop"
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(got.Entries))
	}
	if got.Entries[0].Comment != doc.Entries[0].Comment {
		t.Fatalf("comment = %q, want %q", got.Entries[0].Comment, doc.Entries[0].Comment)
	}
}

func TestDecodeMissingWaferlayout(t *testing.T) {
	input := "[HEADER]\nFORMAT=IUVCLADF\nENTRIES=0\n\n[COLUMNS]\nID=W:25,VISIBLE\n\n[DATA]\n"
	if _, err := Decode(strings.NewReader(input)); err == nil {
		t.Fatal("want error for missing WAFERLAYOUT")
	}
}

func TestDecodeEntryCountMismatch(t *testing.T) {
	doc := testDocument()
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := strings.Replace(buf.String(), "ENTRIES=2", "ENTRIES=5", 1)
	if _, err := Decode(strings.NewReader(text)); err == nil {
		t.Fatal("want error for entry count mismatch")
	}
}

func TestDecodeMissingSection(t *testing.T) {
	if _, err := Decode(strings.NewReader("WAFERLAYOUT=x\n")); err == nil {
		t.Fatal("want error for missing sections")
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.pls")
	doc := testDocument()
	if err := WriteFile(path, doc); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Entries) != 2 || got.Wafermap != doc.Wafermap {
		t.Fatalf("round trip through file lost data: %+v", got)
	}
}
