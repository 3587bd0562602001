package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/derby/internal/cli/formatter"
	"github.com/alexanderramin/derby/internal/service"
	"github.com/spf13/cobra"
)

// loggedHour is the local start time of entries logged with --date.
const loggedHour = 17

func newLogCmd(app *App) *cobra.Command {
	var notes string
	date := newDateValue(app.loc())

	cmd := &cobra.Command{
		Use:   "log PROJECT DURATION",
		Short: "Record a completed session after the fact",
		Long: "Record a completed session after the fact. DURATION accepts 1h30m, 45m, 2h " +
			"or a bare number of minutes. Without --date the session ends now; with " +
			"--date it starts at 17:00 that day.",
		Example: "  derby log \"Job Search\" 1h30m\n  derby log Reading 45m --notes \"chapter 3\"\n  derby log Exercise 1h --date 2024-01-15",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d durationValue
			if err := d.Set(args[1]); err != nil {
				return err
			}

			entry := service.ManualEntry{
				Project:  args[0],
				Duration: time.Duration(d),
				Notes:    notes,
			}
			if day := date.Time(); !day.IsZero() {
				entry.Date = day.Add(loggedHour * time.Hour)
			}

			session, err := app.Timer.LogManual(context.Background(), entry)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatLogged(session, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Session notes")
	cmd.Flags().VarP(date, "date", "d", "Day of the session (YYYY-MM-DD)")

	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var project string
	var days, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := service.SessionFilter{Project: project, Limit: limit}
			if days > 0 {
				now := app.now().In(app.loc())
				since := time.Date(now.Year(), now.Month(), now.Day()-days+1, 0, 0, 0, 0, app.loc())
				filter.Since = &since
			}

			sessions, err := app.Timer.ListRecent(context.Background(), filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionList(sessions, app.now().In(app.loc())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Only show this project")
	cmd.Flags().IntVar(&days, "days", 0, "Only show the last N days (0 for all)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of sessions (0 for all)")

	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			id, err := resolveSessionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			session, err := app.Timer.Get(ctx, id)
			if err != nil {
				return err
			}

			now := app.now().In(app.loc())
			title := fmt.Sprintf("Delete %s of %s from %s?",
				formatter.Duration(session.DurationSeconds(now)), session.ProjectName, formatter.SessionDate(session.StartTime, now))
			ok, err := app.confirm(title, yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, formatter.Dim("Kept the session."))
				return nil
			}

			if err := app.Timer.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s  Deleted session %s\n", formatter.StyleRed.Render("✗"), formatter.TruncID(id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
