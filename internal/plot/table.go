package plot

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Align controls how a column's cells are padded.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	// AlignDecimal lines up the decimal points of numeric cells such as
	// signed deltas ("+1.250s", "-12.004s") and lap times. Cells without a
	// point are aligned as if the point followed their last character.
	AlignDecimal
)

// Column is a table column header with its alignment.
type Column struct {
	Title string
	Align Align
}

// FormatTable lays out rows under columns. Rows may be shorter than the
// column list; missing cells are blank. Trailing spaces are trimmed.
func FormatTable(columns []Column, rows [][]string) []string {
	if len(columns) == 0 {
		return nil
	}
	layouts := make([]columnLayout, len(columns))
	for i, col := range columns {
		layouts[i] = newColumnLayout(col, rows, i)
	}

	lines := make([]string, 0, len(rows)+1)
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = layouts[i].pad(col.Title, true)
	}
	lines = append(lines, strings.TrimRight(strings.Join(header, " "), " "))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i := range columns {
			cells[i] = layouts[i].pad(cellAt(row, i), false)
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, " "), " "))
	}
	return lines
}

type columnLayout struct {
	align Align
	width int
	// intWidth and fracWidth split decimal columns at the point.
	intWidth  int
	fracWidth int
}

func newColumnLayout(col Column, rows [][]string, index int) columnLayout {
	l := columnLayout{align: col.Align}
	for _, row := range rows {
		cell := cellAt(row, index)
		if l.align == AlignDecimal {
			whole, frac := splitDecimal(cell)
			l.intWidth = max(l.intWidth, displayWidth(whole))
			l.fracWidth = max(l.fracWidth, displayWidth(frac))
			continue
		}
		l.width = max(l.width, displayWidth(cell))
	}
	if l.align == AlignDecimal {
		l.width = l.intWidth + l.fracWidth
	}
	l.width = max(l.width, displayWidth(col.Title))
	return l
}

func (l columnLayout) pad(cell string, header bool) string {
	switch {
	case l.align == AlignDecimal && !header:
		whole, frac := splitDecimal(cell)
		cell = padLeft(whole, l.intWidth) + padRight(frac, l.fracWidth)
		return padLeft(cell, l.width)
	case l.align == AlignLeft:
		return padRight(cell, l.width)
	default:
		return padLeft(cell, l.width)
	}
}

// splitDecimal splits at the first '.', keeping the point with the fraction.
func splitDecimal(cell string) (string, string) {
	if i := strings.IndexByte(cell, '.'); i >= 0 {
		return cell[:i], cell[i:]
	}
	return cell, ""
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func padLeft(s string, width int) string {
	if w := displayWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

func padRight(s string, width int) string {
	if w := displayWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
