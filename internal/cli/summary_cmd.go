package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alexanderramin/derby/internal/cli/formatter"
	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/service"
	"github.com/alexanderramin/derby/internal/summary"
	"github.com/spf13/cobra"
)

var periodTitles = map[string]string{
	summary.PeriodToday:     "Today",
	summary.PeriodYesterday: "Yesterday",
	summary.PeriodWeek:      "This week",
	summary.PeriodLastWeek:  "Last week",
	summary.PeriodMonth:     "This month",
	summary.PeriodLastMonth: "Last month",
	summary.PeriodAll:       "All time",
}

// rangeFlags holds the --period, --from and --to flags shared by summary
// and export.
type rangeFlags struct {
	period string
	from   *dateValue
	to     *dateValue
}

func addRangeFlags(cmd *cobra.Command, app *App, defaultPeriod string) *rangeFlags {
	f := &rangeFlags{from: newDateValue(app.loc()), to: newDateValue(app.loc())}
	cmd.Flags().StringVarP(&f.period, "period", "p", defaultPeriod,
		"today, yesterday, week, last-week, month, last-month or all")
	cmd.Flags().Var(f.from, "from", "First day to include (YYYY-MM-DD)")
	cmd.Flags().Var(f.to, "to", "Last day to include (YYYY-MM-DD)")
	return f
}

// resolve returns the range and a title for it. Explicit days win over the
// period.
func (f *rangeFlags) resolve(app *App) (summary.Range, string, error) {
	from, to := f.from.Time(), f.to.Time()
	if !from.IsZero() || !to.IsZero() {
		r := summary.DayRange(from, to, app.loc())
		if err := r.Validate(); err != nil {
			return summary.Range{}, "", err
		}
		return r, dayTitle(from, to), nil
	}

	r, err := summary.PeriodRange(f.period, app.now(), app.loc())
	if err != nil {
		return summary.Range{}, "", err
	}
	return r, periodTitles[f.period], nil
}

func dayTitle(from, to time.Time) string {
	switch {
	case from.IsZero():
		return "Until " + to.Format(dateLayout)
	case to.IsZero():
		return "Since " + from.Format(dateLayout)
	case from.Format(dateLayout) == to.Format(dateLayout):
		return from.Format(dateLayout)
	default:
		return from.Format(dateLayout) + " to " + to.Format(dateLayout)
	}
}

func newSummaryCmd(app *App) *cobra.Command {
	var sortBy, granularity, only string
	var group bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show time per project for a period",
		Long: "Show time per project for a period. Unset flags fall back to the " +
			"summary.* settings (see derby config list).",
		Args: cobra.NoArgs,
	}
	ranges := addRangeFlags(cmd, app, "")
	cmd.Flags().StringVar(&sortBy, "sort", "", "priority or tag")
	cmd.Flags().BoolVar(&group, "group", false, "One row per priority level or tag")
	cmd.Flags().StringVar(&granularity, "granularity", "", "none, weekly or monthly")
	cmd.Flags().StringVar(&only, "only", "", "Restrict to projects or background")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := fillFromSettings(ctx, app, cmd, map[string]*string{
			"period":      &ranges.period,
			"sort":        &sortBy,
			"granularity": &granularity,
		}); err != nil {
			return err
		}
		if !cmd.Flags().Changed("group") {
			v, err := app.Settings.Get(ctx, service.SettingSummaryGroup)
			if err != nil {
				return err
			}
			group, _ = strconv.ParseBool(v)
		}

		class := domain.ClassAll
		if only != "" {
			if !domain.ValidClassifications[only] || only == string(domain.ClassAll) {
				return fmt.Errorf("--only must be projects or background, got %q", only)
			}
			class = domain.Classification(only)
		}

		r, title, err := ranges.resolve(app)
		if err != nil {
			return err
		}

		report, err := app.Summary.Summarize(ctx, service.SummaryRequest{
			Range:          r,
			Classification: class,
			SortBy:         domain.SortKey(sortBy),
			Group:          group,
			Granularity:    domain.Granularity(granularity),
			Location:       app.loc(),
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(report, title))
		return nil
	}

	return cmd
}

// fillFromSettings replaces unchanged flag values with stored settings.
func fillFromSettings(ctx context.Context, app *App, cmd *cobra.Command, flags map[string]*string) error {
	keys := map[string]string{
		"period":      service.SettingSummaryPeriod,
		"sort":        service.SettingSummarySort,
		"granularity": service.SettingSummaryGranularity,
	}
	for name, target := range flags {
		if cmd.Flags().Changed(name) {
			continue
		}
		v, err := app.Settings.Get(ctx, keys[name])
		if err != nil {
			return err
		}
		*target = v
	}
	return nil
}

// createOutput opens the export target. Tests swap it to exercise close
// failures.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeOutputFile runs write against path. A failed close is returned when
// write itself succeeded.
func writeOutputFile(path string, write func(io.Writer) (int, error)) (n int, err error) {
	f, err := createOutput(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	n, err = write(f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("closing %s: %w", path, cerr)
	}
	return n, err
}

func newExportCmd(app *App) *cobra.Command {
	var output, project string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completed sessions as CSV",
		Args:  cobra.NoArgs,
	}
	ranges := addRangeFlags(cmd, app, summary.PeriodAll)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to FILE instead of stdout")
	cmd.Flags().StringVar(&project, "project", "", "Only export this project")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, _, err := ranges.resolve(app)
		if err != nil {
			return err
		}

		write := func(w io.Writer) (int, error) {
			return app.Export.ExportCSV(context.Background(), w, service.ExportRequest{
				Range:    r,
				Project:  project,
				Location: app.loc(),
			})
		}
		if output == "" {
			_, err := write(cmd.OutOrStdout())
			return err
		}

		n, err := writeOutputFile(output, write)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s  Exported %d session(s) to %s\n", formatter.StyleGreen.Render("✓"), n, output)
		return nil
	}

	return cmd
}
