package pdfsource

import "strings"

// Horizontal gap thresholds in text-space units. A small gap between glyph
// runs is a word break; a wide one is a column boundary.
const (
	wordGap = 1.0
	cellGap = 18.0
)

type positionedWord struct {
	x, w float64
	s    string
}

// splitRowIntoCells groups one row's glyph runs into cells by gap width.
func splitRowIntoCells(words []positionedWord) []string {
	if len(words) == 0 {
		return nil
	}

	var cells []string
	var cur strings.Builder
	var prevEnd float64

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			cells = append(cells, s)
		}
		cur.Reset()
	}

	for i, w := range words {
		if i > 0 {
			gap := w.x - prevEnd
			switch {
			case gap >= cellGap:
				flush()
			case gap >= wordGap:
				cur.WriteString(" ")
			}
		}
		cur.WriteString(w.s)
		prevEnd = w.x + w.w
	}
	flush()
	return cells
}

// tablesFromCellRows recovers table-like regions: contiguous runs of rows
// with at least two cells. Single-cell rows are prose and break the run.
// Runs shorter than two rows are dropped.
func tablesFromCellRows(rows [][]string) [][][]string {
	var tables [][][]string
	var current [][]string

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, row := range rows {
		if len(row) < 2 {
			flush()
			continue
		}
		current = append(current, row)
	}
	flush()
	return tables
}
