package cli

import (
	"time"

	"github.com/alexanderramin/derby/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and environment used by CLI commands.
type App struct {
	Timer    service.TimerService
	Projects service.ProjectService
	Summary  service.SummaryService
	Export   service.ExportService
	Settings service.SettingsService

	// Now and Location default to time.Now and time.Local.
	Now      func() time.Time
	Location *time.Location

	// IsInteractive reports whether stdin is a terminal. Confirmations are
	// refused without --yes when it returns false or is nil.
	IsInteractive func() bool

	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title string) (bool, error)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) loc() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return time.Local
}

// NewRootCmd creates the top-level "derby" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "derby",
		Short:         "Track time across projects and background tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStartCmd(app),
		newStopCmd(app),
		newPauseCmd(app),
		newResumeCmd(app),
		newStopAllCmd(app),
		newSwitchCmd(app),
		newCancelCmd(app),
		newStatusCmd(app),
		newLogCmd(app),
		newListCmd(app),
		newDeleteCmd(app),
		newSummaryCmd(app),
		newExportCmd(app),
		newProjectCmd(app),
		newTagCmd(app),
		newTagsCmd(app),
		newConfigCmd(app),
		newWatchCmd(app),
	)

	return root
}
