// Package plsfile encodes and decodes the writer's positionlist file format:
// an INI-style text file with [HEADER], [COLUMNS], and [DATA] sections, the
// data block being CSV rows in column order. The field layout follows the
// instrument's own files, so lists built here load directly on the writer.
package plsfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"beamplan/pkg/domain"
)

// Document is the serialized form of a positionlist.
type Document struct {
	Wafermap     string
	GeometryFile string
	Entries      []domain.Entry
}

const headerFormat = "IUVCLADF"

// Column layout written to [COLUMNS]; widths and visibility follow the
// writer's defaults.
var columns = []struct {
	name    string
	width   int
	visible bool
}{
	{"ID", 25, true},
	{"U", 50, true},
	{"V", 50, true},
	{"Comment", 100, true},
	{"Layer", 80, true},
	{"Area", 50, false},
	{"DoseFactor", 55, true},
}

// Encode writes doc to w. It performs no validation beyond formatting; the
// store guards serialization preconditions.
func Encode(w io.Writer, doc Document) error {
	var b strings.Builder
	b.WriteString("[HEADER]\n")
	b.WriteString("FORMAT=" + headerFormat + "\n")
	b.WriteString("WAFERLAYOUT=" + doc.Wafermap + "\n")
	b.WriteString("GDSFILE=" + doc.GeometryFile + "\n")
	fmt.Fprintf(&b, "ENTRIES=%d\n", len(doc.Entries))
	b.WriteString("\n[COLUMNS]\n")
	b.WriteString("No.=W:25,!VISIBLE\n")
	for _, c := range columns {
		vis := "VISIBLE"
		if !c.visible {
			vis = "!VISIBLE"
		}
		fmt.Fprintf(&b, "%s=W:%d,%s\n", c.name, c.width, vis)
	}
	b.WriteString("\n[DATA]\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	for _, e := range doc.Entries {
		if err := cw.Write(encodeRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatValue emits the shortest decimal that parses back to the same
// float64, so values survive a write/read cycle bit-exact.
func formatValue(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func encodeRow(e domain.Entry) []string {
	return []string{
		strconv.Itoa(e.ID),
		formatValue(e.Position.U),
		formatValue(e.Position.V),
		e.CellRef,
		joinLayers(e.Layers),
		joinArea(e.Area),
		formatValue(e.DoseFactor),
		e.Comment,
	}
}

func joinLayers(layers []int) string {
	if len(layers) == 0 {
		return ""
	}
	parts := make([]string, len(layers))
	for i, l := range layers {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ";")
}

func joinArea(area *domain.Box) string {
	if area == nil {
		return ""
	}
	parts := []string{
		formatValue(area.MinU),
		formatValue(area.MinV),
		formatValue(area.MaxU),
		formatValue(area.MaxV),
	}
	return strings.Join(parts, ";")
}

// Decode parses a positionlist document from r.
func Decode(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")

	header, rest, err := section(text, "[HEADER]")
	if err != nil {
		return Document{}, err
	}
	if _, rest, err = section(rest, "[COLUMNS]"); err != nil {
		return Document{}, err
	}
	data, err := dataSection(rest)
	if err != nil {
		return Document{}, err
	}

	doc := Document{}
	declared := -1
	for _, line := range strings.Split(header, "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "WAFERLAYOUT":
			doc.Wafermap = value
		case "GDSFILE":
			doc.GeometryFile = value
		case "ENTRIES":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Document{}, fmt.Errorf("malformed ENTRIES header: %w", err)
			}
			declared = n
		}
	}
	if doc.Wafermap == "" {
		return Document{}, fmt.Errorf("positionlist header missing WAFERLAYOUT")
	}

	cr := csv.NewReader(strings.NewReader(data))
	cr.FieldsPerRecord = len(columns) + 1 // trailing comment field
	rows, err := cr.ReadAll()
	if err != nil {
		return Document{}, fmt.Errorf("parse data rows: %w", err)
	}
	for i, row := range rows {
		entry, err := decodeRow(row)
		if err != nil {
			return Document{}, fmt.Errorf("data row %d: %w", i+1, err)
		}
		doc.Entries = append(doc.Entries, entry)
	}
	if declared >= 0 && declared != len(doc.Entries) {
		return Document{}, fmt.Errorf("header declares %d entries, data holds %d", declared, len(doc.Entries))
	}
	return doc, nil
}

func section(text, name string) (body, rest string, err error) {
	idx := strings.Index(text, name+"\n")
	if idx < 0 {
		if strings.HasSuffix(text, name) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("positionlist file missing %s section", name)
	}
	body = text[idx+len(name)+1:]
	if end := strings.Index(body, "\n["); end >= 0 {
		return body[:end+1], body[end+1:], nil
	}
	return body, "", nil
}

// dataSection returns everything after the [DATA] marker. The data block is
// the final section and its rows are CSV, where a quoted comment may contain
// any byte sequence, so it must not be split on bracketed lines.
func dataSection(text string) (string, error) {
	idx := strings.Index(text, "[DATA]\n")
	if idx < 0 {
		if strings.HasSuffix(text, "[DATA]") {
			return "", nil
		}
		return "", fmt.Errorf("positionlist file missing [DATA] section")
	}
	return text[idx+len("[DATA]\n"):], nil
}

func decodeRow(row []string) (domain.Entry, error) {
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return domain.Entry{}, fmt.Errorf("malformed ID %q: %w", row[0], err)
	}
	u, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("malformed U %q: %w", row[1], err)
	}
	v, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("malformed V %q: %w", row[2], err)
	}
	layers, err := splitLayers(row[4])
	if err != nil {
		return domain.Entry{}, err
	}
	area, err := splitArea(row[5])
	if err != nil {
		return domain.Entry{}, err
	}
	dose, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("malformed DoseFactor %q: %w", row[6], err)
	}
	return domain.Entry{
		ID:         id,
		CellRef:    row[3],
		Position:   domain.Vec{U: u, V: v},
		Layers:     layers,
		DoseFactor: dose,
		Area:       area,
		Comment:    row[7],
	}, nil
}

func splitLayers(field string) ([]int, error) {
	if field == "" {
		return nil, nil
	}
	parts := strings.Split(field, ";")
	out := make([]int, len(parts))
	for i, p := range parts {
		l, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("malformed Layer %q: %w", field, err)
		}
		out[i] = l
	}
	return out, nil
}

func splitArea(field string) (*domain.Box, error) {
	if field == "" {
		return nil, nil
	}
	parts := strings.Split(field, ";")
	if len(parts) != 4 {
		return nil, fmt.Errorf("malformed Area %q: want four ;-separated values", field)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed Area %q: %w", field, err)
		}
		vals[i] = f
	}
	return &domain.Box{MinU: vals[0], MinV: vals[1], MaxU: vals[2], MaxV: vals[3]}, nil
}
