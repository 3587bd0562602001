package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/derby/internal/cli/formatter"
	"github.com/alexanderramin/derby/internal/service"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change stored preferences",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print a setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := app.Settings.Get(context.Background(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Settings.Set(context.Background(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], formatter.Bold(args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List every setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				values, err := app.Settings.List(context.Background())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(values))
				for _, k := range service.SettingKeys() {
					v := values[k]
					def := ""
					if v == service.SettingDefaults[k] {
						def = formatter.Dim("(default)")
					}
					rows = append(rows, []string{k, formatter.Bold(v), def})
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"KEY", "VALUE", ""}, rows))
				return nil
			},
		},
	)

	return cmd
}
