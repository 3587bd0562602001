package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
)

// FormatProjectList renders projects inside a bordered box.
func FormatProjectList(projects []*domain.Project, now time.Time) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Add one with: derby project add NAME") + "\n"
	}

	headers := []string{"NAME", "PRIORITY", "TAGS", "CREATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		priority := PriorityBadge(p)
		if !p.IsBackground {
			priority += " " + Dim(domain.PriorityLabels[p.Priority])
		}
		tags := Dim("--")
		if len(p.Tags) > 0 {
			tags = StyleBlue.Render(strings.Join(p.Tags, ", "))
		}
		rows = append(rows, []string{
			Bold(p.Name),
			priority,
			tags,
			HumanDate(p.CreatedAt, now),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProject renders a one-line description of a project.
func FormatProject(p *domain.Project) string {
	if p.IsBackground {
		return fmt.Sprintf("%s %s", Bold(p.Name), Dim("(background task)"))
	}
	out := fmt.Sprintf("%s %s", Bold(p.Name), PriorityStyle(p.Priority).Render(domain.PriorityLabel(p.Priority)))
	if len(p.Tags) > 0 {
		out += " " + StyleBlue.Render("#"+strings.Join(p.Tags, " #"))
	}
	return out
}

// FormatTagTree renders every tag with its projects beneath it. members maps
// a tag name to the projects carrying it.
func FormatTagTree(tags []domain.Tag, members map[string][]*domain.Project) string {
	if len(tags) == 0 {
		return Dim("No tags yet. Tag a project with: derby tag PROJECT --add TAG") + "\n"
	}

	var items []TreeItem
	for _, t := range tags {
		items = append(items, TreeItem{
			Title:  t.Name,
			Muted:  t.ProjectCount == 0,
			Detail: pluralize(t.ProjectCount, "project"),
		})
		projects := members[t.Name]
		for i, p := range projects {
			items = append(items, TreeItem{
				Title:  p.Name,
				Level:  1,
				IsLast: i == len(projects)-1,
				Detail: fmt.Sprintf("P%d", p.Priority),
			})
		}
	}
	return RenderBox("Tags", RenderTree(items))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
