package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/derby/internal/cli/formatter"
	"github.com/alexanderramin/derby/internal/domain"
	"github.com/spf13/cobra"
)

func newStartCmd(app *App) *cobra.Command {
	var create, background bool
	var priority int

	cmd := &cobra.Command{
		Use:   "start PROJECT",
		Short: "Start tracking a project",
		Long: "Start tracking a project. Several projects can be tracked at once, " +
			"but each project has at most one active session.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			name := args[0]

			if create {
				_, err := app.Projects.Get(ctx, name)
				if errors.Is(err, domain.ErrUnknownProject) {
					p := &domain.Project{Name: name, Priority: priority, IsBackground: background}
					if err := app.Projects.Create(ctx, p); err != nil {
						return err
					}
					fmt.Fprintf(out, "%s  Created %s\n", formatter.StyleGreen.Render("+"), formatter.FormatProject(p))
				} else if err != nil {
					return err
				}
			}

			session, err := app.Timer.Start(ctx, name)
			if errors.Is(err, domain.ErrUnknownProject) && !create {
				return fmt.Errorf("%w (use --create to add it)", err)
			}
			if err != nil {
				return err
			}

			if active, err := app.Timer.Active(ctx); err == nil && len(active) > 1 {
				fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("Note: %d other session(s) are also active", len(active)-1)))
			}
			fmt.Fprint(out, formatter.FormatStarted(session, app.loc()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create the project if it does not exist")
	cmd.Flags().IntVar(&priority, "priority", domain.DefaultPriority, "Priority for a created project (1-5)")
	cmd.Flags().BoolVar(&background, "background", false, "Create the project as a background task")

	return cmd
}

func newStopCmd(app *App) *cobra.Command {
	var id, notes string

	cmd := &cobra.Command{
		Use:   "stop [PROJECT]",
		Short: "Stop a session (the most recently started one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var (
				session *domain.Session
				err     error
			)
			switch {
			case id != "":
				var full string
				if full, err = resolveSessionID(ctx, app, id); err != nil {
					return err
				}
				session, err = app.Timer.Stop(ctx, full, notes)
			case len(args) == 1:
				session, err = app.Timer.StopProject(ctx, args[0], notes)
			default:
				session, err = app.Timer.StopLatest(ctx, notes)
			}
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStopped(session, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Session ID (or unique prefix) to stop")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes about what you worked on")

	return cmd
}

func newPauseCmd(app *App) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "pause [PROJECT]",
		Short: "Pause an active session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			target, err := resolveActiveSession(ctx, app, args, id, func(s *domain.Session) bool { return !s.IsPaused }, domain.ErrNotActive)
			if err != nil {
				return err
			}
			session, err := app.Timer.Pause(ctx, target)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPaused(session, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Session ID (or unique prefix) to pause")
	return cmd
}

func newResumeCmd(app *App) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "resume [PROJECT]",
		Short: "Resume a paused session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			target, err := resolveActiveSession(ctx, app, args, id, func(s *domain.Session) bool { return s.IsPaused }, domain.ErrNotPaused)
			if err != nil {
				return err
			}
			session, err := app.Timer.Resume(ctx, target)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResumed(session, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Session ID (or unique prefix) to resume")
	return cmd
}

func newStopAllCmd(app *App) *cobra.Command {
	var notes string
	var yes bool

	cmd := &cobra.Command{
		Use:   "stopall",
		Short: "Stop every active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			active, err := app.Timer.Active(ctx)
			if err != nil {
				return err
			}
			if len(active) == 0 {
				fmt.Fprintln(out, formatter.Dim("No active sessions to stop."))
				return nil
			}

			fmt.Fprint(out, formatter.FormatActive(active, app.now(), app.loc()))
			ok, err := app.confirm(fmt.Sprintf("Stop all %d sessions?", len(active)), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, formatter.Dim("Cancelled."))
				return nil
			}

			stopped, err := app.Timer.StopAll(ctx, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s  Stopped %d session(s)\n", formatter.StyleRed.Render("■"), len(stopped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes to apply to every stopped session")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newSwitchCmd(app *App) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "switch PROJECT",
		Short: "Stop the current session and start another project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from != "" && from == args[0] {
				return fmt.Errorf("project %q: %w", from, domain.ErrAlreadyActive)
			}
			res, err := app.Timer.Switch(context.Background(), args[0], from)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Stopped != nil {
				fmt.Fprint(out, formatter.FormatStopped(res.Stopped, app.now()))
			}
			fmt.Fprint(out, formatter.FormatStarted(res.Started, app.loc()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Project to switch from (default: most recent)")
	return cmd
}

func newCancelCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel [PROJECT]",
		Short: "Discard an active session without recording it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			project := ""
			if len(args) == 1 {
				project = args[0]
			}
			target, err := findActive(ctx, app, project)
			if err != nil {
				return err
			}

			title := fmt.Sprintf("Discard %s of %s?", formatter.Duration(target.DurationSeconds(app.now())), target.ProjectName)
			ok, err := app.confirm(title, yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, formatter.Dim("Kept the session."))
				return nil
			}

			session, err := app.Timer.Cancel(ctx, target.ProjectName)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatCancelled(session))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show active sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := app.Timer.Active(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActive(active, app.now(), app.loc()))
			return nil
		},
	}
}
