package core

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"beamplan/internal/selection"
	"beamplan/pkg/domain"
)

// DefaultColumns is the column set Tabulate uses when none are given.
var DefaultColumns = []string{"ID", "U", "V", "Comment", "Layer", "DoseFactor"}

// Tabulate writes an aligned text table of the selected entries to w. Columns
// are named by entry attribute; unknown names yield UnknownAttributeError.
func (p *Positionlist) Tabulate(w io.Writer, expr string, cols []string) error {
	if len(cols) == 0 {
		cols = DefaultColumns
	}
	for _, c := range cols {
		if !selection.IsAttribute(c) {
			return domain.UnknownAttributeError{Name: c}
		}
	}
	entries, err := p.Select(expr)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	for _, e := range entries {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = formatCell(e, c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(e domain.Entry, col string) string {
	switch col {
	case "ID":
		return strconv.Itoa(e.ID)
	case "U":
		return strconv.FormatFloat(e.Position.U, 'f', 3, 64)
	case "V":
		return strconv.FormatFloat(e.Position.V, 'f', 3, 64)
	case "Comment":
		return e.Comment
	case "Layer":
		if len(e.Layers) == 0 {
			return "all"
		}
		parts := make([]string, len(e.Layers))
		for i, l := range e.Layers {
			parts[i] = strconv.Itoa(l)
		}
		return strings.Join(parts, ";")
	case "Area":
		if e.Area == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f;%.2f;%.2f;%.2f", e.Area.MinU, e.Area.MinV, e.Area.MaxU, e.Area.MaxV)
	case "DoseFactor":
		return strconv.FormatFloat(e.DoseFactor, 'f', 2, 64)
	}
	return ""
}
