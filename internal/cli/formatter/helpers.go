package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + strings.TrimRight(content, "\n")
		return boxStyle.Render(inner) + "\n"
	}

	return boxStyle.Render(strings.TrimRight(content, "\n")) + "\n"
}

// HumanDate renders t as "Today", "Yesterday" or "Jan 2, 2006" relative to now.
func HumanDate(t, now time.Time) string {
	t = t.In(now.Location())
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()

	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	y3, m3, d3 := now.AddDate(0, 0, -1).Date()
	if y2 == y3 && m2 == m3 && d2 == d3 {
		return "Yesterday"
	}
	return t.Format("Jan 2, 2006")
}

// SessionDate renders a start time for lists: the day and the clock time.
func SessionDate(t, now time.Time) string {
	return HumanDate(t, now) + " " + t.In(now.Location()).Format("15:04")
}

// ClockTime renders t as "15:04" in loc.
func ClockTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04")
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Truncate shortens s to at most n runes, ending with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}

// StatePill returns a colored indicator for a session's state.
func StatePill(s *domain.Session) string {
	switch {
	case !s.IsActive():
		return StyleDim.Render("■ Stopped")
	case s.IsPaused:
		return StyleYellow.Render("‖ Paused")
	default:
		return StyleGreen.Render("● Running")
	}
}

// Duration renders whole seconds as "1h 2m", or "0m" when empty.
func Duration(seconds int64) string {
	return domain.FormatHuman(seconds)
}

// Hours renders decimal hours with two places.
func Hours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}
