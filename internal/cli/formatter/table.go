package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Align controls horizontal placement within a column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// colGap is the padding between columns.
const colGap = 2

// Table is an aligned text table with a header separator line. Columns are
// padded to the widest cell, measured by visible width.
type Table struct {
	Headers []string
	Rows    [][]string

	// Align holds per-column alignment; missing entries are left aligned.
	Align []Align

	// Breaks marks row indexes preceded by a blank line.
	Breaks map[int]bool

	// Footer is rendered under a second separator, e.g. for totals.
	Footer []string
}

// RenderTable renders a left-aligned table.
func RenderTable(headers []string, rows [][]string) string {
	return Table{Headers: headers, Rows: rows}.Render()
}

// Render draws the table. An empty header list renders nothing.
func (t Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}

	cols := len(t.Headers)
	widths := make([]int, cols)
	measure := func(row []string) {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	measure(t.Footer)

	var b strings.Builder

	styled := make([]string, cols)
	for i, h := range t.Headers {
		styled[i] = StyleHeader.Render(h)
	}
	t.writeRow(&b, styled, widths)
	t.writeSeparator(&b, widths)

	for i, row := range t.Rows {
		if t.Breaks[i] && i > 0 {
			b.WriteString("\n")
		}
		t.writeRow(&b, row, widths)
	}

	if len(t.Footer) > 0 {
		t.writeSeparator(&b, widths)
		t.writeRow(&b, t.Footer, widths)
	}

	return b.String()
}

func (t Table) writeRow(b *strings.Builder, row []string, widths []int) {
	cols := len(widths)
	line := make([]string, cols)
	for i := 0; i < cols; i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		pad := widths[i] - lipgloss.Width(cell)
		if pad < 0 {
			pad = 0
		}
		if t.align(i) == AlignRight {
			line[i] = strings.Repeat(" ", pad) + cell
		} else if i < cols-1 {
			line[i] = cell + strings.Repeat(" ", pad)
		} else {
			line[i] = cell
		}
	}
	b.WriteString(strings.Join(line, strings.Repeat(" ", colGap)))
	b.WriteString("\n")
}

func (t Table) writeSeparator(b *strings.Builder, widths []int) {
	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
}

func (t Table) align(col int) Align {
	if col < len(t.Align) {
		return t.Align[col]
	}
	return AlignLeft
}
