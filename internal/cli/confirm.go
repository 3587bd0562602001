package cli

import (
	"errors"

	"github.com/alexanderramin/derby/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	errConfirmationRequired = errors.New("confirmation required: pass --yes to run without a terminal")
	errTerminalRequired     = errors.New("watch needs an interactive terminal")
)

// confirm returns true when yes is set or the user agrees. Without a
// terminal it refuses rather than guessing.
func (a *App) confirm(title string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if a.IsInteractive == nil || !a.IsInteractive() {
		return false, errConfirmationRequired
	}
	ask := a.Confirm
	if ask == nil {
		ask = huhConfirm
	}
	return ask(title)
}

func huhConfirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(derbyHuhTheme()).WithShowHelp(false).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func derbyHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}
