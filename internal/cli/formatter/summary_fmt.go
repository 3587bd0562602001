package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/summary"
)

const shareWidth = 10

// FormatSummary renders a report as one table per section, followed by the
// combined total when both sections are present.
func FormatSummary(r *summary.Report, title string) string {
	if r.IsEmpty() {
		return RenderBox(title, Dim("No time tracked in this period."))
	}

	var parts []string
	if r.Projects != nil && len(r.Projects.Rows) > 0 {
		parts = append(parts, formatSection("Projects", r.Projects, r, true))
	}
	if r.Background != nil && len(r.Background.Rows) > 0 {
		parts = append(parts, formatSection("Background", r.Background, r, false))
	}
	if r.Projects != nil && r.Background != nil {
		parts = append(parts, fmt.Sprintf("%s %s %s",
			StyleHeader.Render("COMBINED"),
			Bold(domain.FormatLong(r.CombinedTotal)),
			Dim(fmt.Sprintf("(%s h)", Hours(r.CombinedHours)))))
	}
	return RenderBox(title, strings.Join(parts, "\n"))
}

func formatSection(name string, sec *summary.Section, r *summary.Report, withGroups bool) string {
	// Grouped rows already are the groups, so the column would repeat them.
	showGroup := withGroups && !r.Options.Group

	var headers []string
	var align []Align
	if showGroup {
		headers = append(headers, groupHeader(r.Options.SortBy))
		align = append(align, AlignLeft)
	}
	headers = append(headers, "NAME")
	align = append(align, AlignLeft)
	for _, l := range r.PeriodLabels {
		headers = append(headers, strings.ToUpper(l))
		align = append(align, AlignRight)
	}
	headers = append(headers, "TOTAL", "HOURS", "SHARE")
	align = append(align, AlignRight, AlignRight, AlignLeft)

	t := Table{Headers: headers, Align: align, Breaks: map[int]bool{}}
	for i, row := range sec.Rows {
		var cells []string
		if showGroup {
			group := ""
			if i == 0 || row.SeparatorBefore {
				group = groupCell(row, r.Options.SortBy)
			}
			cells = append(cells, group)
		}
		cells = append(cells, rowLabel(row))
		for _, v := range row.Periods {
			cells = append(cells, periodCell(v))
		}
		cells = append(cells,
			Bold(domain.FormatShort(row.Total)),
			Hours(row.DecimalHours),
			RenderShare(row.Total, sec.Total, shareWidth),
		)
		t.Rows = append(t.Rows, cells)
		if row.SeparatorBefore {
			t.Breaks[i] = true
		}
	}

	footer := []string{}
	if showGroup {
		footer = append(footer, "")
	}
	footer = append(footer, StyleHeader.Render("TOTAL"))
	for _, v := range sec.Periods {
		footer = append(footer, periodCell(v))
	}
	footer = append(footer, Bold(domain.FormatShort(sec.Total)), Hours(sec.DecimalHours), "")
	t.Footer = footer

	return Header(name) + "\n" + t.Render()
}

func groupHeader(sort domain.SortKey) string {
	if sort == domain.SortByTag {
		return "TAG"
	}
	return "PRIORITY"
}

func groupCell(row summary.Row, sort domain.SortKey) string {
	if sort == domain.SortByTag {
		return StyleBlue.Render(row.Group)
	}
	return PriorityStyle(row.Priority).Render(row.Group)
}

func rowLabel(row summary.Row) string {
	if row.Project == "" {
		return Bold(row.Label)
	}
	label := Bold(row.Label)
	if row.MultiTagged {
		label += Dim(" *")
	}
	if row.Orphaned {
		label += Dim(" (deleted)")
	}
	return label
}

func periodCell(seconds int64) string {
	if seconds <= 0 {
		return Dim(domain.ZeroShort)
	}
	return domain.FormatShort(seconds)
}
