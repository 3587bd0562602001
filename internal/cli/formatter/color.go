package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)

	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
)

// PriorityStyle returns the style for a priority level. Background tasks
// (priority 0) are purple.
func PriorityStyle(priority int) lipgloss.Style {
	switch priority {
	case domain.BackgroundPriority:
		return StylePurple
	case 1:
		return StyleRed
	case 2:
		return StyleYellow
	case 3:
		return StyleFg
	case 4:
		return StyleBlue
	default:
		return StyleDim
	}
}

// PriorityBadge renders "P1".."P5", or "bg" for background tasks.
func PriorityBadge(p *domain.Project) string {
	if p.IsBackground {
		return StylePurple.Render("bg")
	}
	return PriorityStyle(p.Priority).Render(fmt.Sprintf("P%d", p.Priority))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
