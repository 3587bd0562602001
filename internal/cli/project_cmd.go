package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/derby/internal/cli/formatter"
	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects and background tasks",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectRenameCmd(app),
		newProjectRemoveCmd(app),
		newProjectPriorityCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var priority int
	var background bool
	var tags []string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.Project{
				Name:         args[0],
				Priority:     priority,
				IsBackground: background,
				Tags:         tags,
			}
			if err := app.Projects.Create(context.Background(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  Created %s\n", formatter.StyleGreen.Render("+"), formatter.FormatProject(p))
			return nil
		},
	}

	cmd.Flags().IntVar(&priority, "priority", domain.DefaultPriority, "Priority from 1 (critical) to 5 (very low)")
	cmd.Flags().BoolVar(&background, "background", false, "Create a background task (no priority or tags)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var tag, only string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.ProjectFilter{Tag: tag}
			switch only {
			case "":
			case string(domain.ClassProjects):
				filter.Background = boolPtr(false)
			case string(domain.ClassBackground):
				filter.Background = boolPtr(true)
			default:
				return fmt.Errorf("--only must be projects or background, got %q", only)
			}

			projects, err := app.Projects.List(context.Background(), filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects, app.now().In(app.loc())))
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Only projects with this tag")
	cmd.Flags().StringVar(&only, "only", "", "projects or background")

	return cmd
}

func newProjectRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a project and move its sessions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			moved, err := app.Projects.Rename(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s %s\n",
				formatter.Bold(args[0]), formatter.Bold(args[1]), formatter.Dim(fmt.Sprintf("(%d sessions)", moved)))
			return nil
		},
	}
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var deleteSessions, yes bool

	cmd := &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Delete a project",
		Long: "Delete a project. Its sessions stay in the history and still appear " +
			"in summaries unless --delete-sessions is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			name := args[0]

			if _, err := app.Projects.Get(ctx, name); err != nil {
				return err
			}
			title := fmt.Sprintf("Delete project %s?", name)
			if deleteSessions {
				title = fmt.Sprintf("Delete project %s and all of its sessions?", name)
			}
			ok, err := app.confirm(title, yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, formatter.Dim("Cancelled."))
				return nil
			}

			deleted, err := app.Projects.Delete(ctx, name, deleteSessions)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("%s  Deleted %s", formatter.StyleRed.Render("✗"), formatter.Bold(name))
			if deleteSessions {
				msg += formatter.Dim(fmt.Sprintf(" and %d session(s)", deleted))
			}
			fmt.Fprintln(out, msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteSessions, "delete-sessions", false, "Also delete the project's sessions")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newProjectPriorityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "priority NAME LEVEL",
		Short: "Set a project's priority (1-5)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("priority must be a number from %d to %d: %w", domain.MinPriority, domain.MaxPriority, domain.ErrInvalidPriority)
			}
			if err := app.Projects.SetPriority(context.Background(), args[0], level); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n",
				formatter.Bold(args[0]), formatter.PriorityStyle(level).Render(domain.PriorityLabel(level)))
			return nil
		},
	}
}

func newTagCmd(app *App) *cobra.Command {
	var add, remove []string

	cmd := &cobra.Command{
		Use:   "tag PROJECT",
		Short: "Add or remove tags on a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			name := args[0]

			for _, t := range add {
				if err := app.Projects.AddTag(ctx, name, t); err != nil {
					return err
				}
			}
			for _, t := range remove {
				if err := app.Projects.RemoveTag(ctx, name, t); err != nil {
					return fmt.Errorf("removing tag %q: %w", t, err)
				}
			}

			p, err := app.Projects.Get(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProject(p))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&add, "add", "a", nil, "Tags to add")
	cmd.Flags().StringSliceVarP(&remove, "remove", "r", nil, "Tags to remove")

	return cmd
}

func newTagsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags and the projects carrying them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			tags, err := app.Projects.ListTags(ctx)
			if err != nil {
				return err
			}

			members := make(map[string][]*domain.Project, len(tags))
			for _, t := range tags {
				if t.ProjectCount == 0 {
					continue
				}
				projects, err := app.Projects.List(ctx, repository.ProjectFilter{Tag: t.Name})
				if err != nil {
					return err
				}
				members[t.Name] = projects
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTagTree(tags, members))
			return nil
		},
	}
}

func boolPtr(b bool) *bool { return &b }
