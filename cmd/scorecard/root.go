package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kpidash/internal/domain/performance"
	"kpidash/internal/domain/reports"
	"kpidash/internal/domain/scoring"
	"kpidash/internal/platform/config"
	"kpidash/internal/platform/crypto"
	"kpidash/internal/platform/db"
	"kpidash/internal/platform/logging"
)

type options struct {
	director   string
	month      string
	week       int
	year       int
	transitive bool
	out        string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "scorecard",
		Short: "Score a director's team from the command line",
		Long: `Score a director's team for one month or one week and either print the
dashboard as JSON or export it as a PDF scorecard.

Configuration is read the same way as the server: KPIDASH_CONFIG names an
optional YAML file and KPIDASH_* variables override it.

EXAMPLES:

  scorecard dashboard --director 7c1e... --month march --year 2024
  scorecard export --director 7c1e... --week 9 --year 2024 --out ./out
  scorecard export --director 7c1e... --transitive`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.director, "director", "", "director profile id (required)")
	flags.StringVar(&opts.month, "month", "", "month name or number (default: current month)")
	flags.IntVar(&opts.week, "week", 0, "week number; selects weekly scoring")
	flags.IntVar(&opts.year, "year", 0, "year (default: current year)")
	flags.BoolVar(&opts.transitive, "transitive", false, "average over the whole subtree")
	root.MarkFlagsMutuallyExclusive("month", "week")
	_ = root.MarkPersistentFlagRequired("director")

	root.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, _, err := buildDashboard(cmd.Context(), opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dash)
		},
	})

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard as a PDF scorecard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, cfg, err := buildDashboard(cmd.Context(), opts)
			if err != nil {
				return err
			}
			sealer, err := crypto.New(cfg.ExportKey)
			if err != nil {
				return fmt.Errorf("export key: %w", err)
			}
			path, err := reports.NewService(opts.out, sealer, nil).ExportScorecard(dash)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	export.Flags().StringVar(&opts.out, "out", "", "output directory (default: configured export dir)")
	root.AddCommand(export)

	return root
}

// selector turns the period flags into a selector, defaulting to the
// period containing now.
func (o *options) selector(now time.Time, loc *time.Location) (scoring.Selector, error) {
	if o.week != 0 {
		year := o.year
		if year == 0 {
			year = scoring.WeekOf(now, loc).Year
		}
		sel := scoring.WeekSelector{Year: year, Week: o.week}
		if !sel.Valid() {
			return nil, fmt.Errorf("week must be between 1 and %d for %d", scoring.WeeksInYear(year), year)
		}
		return sel, nil
	}

	sel := scoring.MonthOf(now, loc)
	if o.month != "" {
		month, err := scoring.ParseMonth(o.month)
		if err != nil {
			return nil, err
		}
		sel.Month = month
	}
	if o.year != 0 {
		sel.Year = o.year
	}
	return sel, nil
}

func buildDashboard(ctx context.Context, opts *options) (performance.Dashboard, config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return performance.Dashboard{}, cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return performance.Dashboard{}, cfg, err
	}
	logging.Setup(cfg.LogLevel, cfg.Environment)
	if opts.out == "" {
		opts.out = cfg.ExportDir
	}

	loc := cfg.Location()
	sel, err := opts.selector(time.Now(), loc)
	if err != nil {
		return performance.Dashboard{}, cfg, err
	}
	if scoring.After(sel, time.Now(), loc) {
		return performance.Dashboard{}, cfg, errors.New(sel.Label() + " has not started yet")
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return performance.Dashboard{}, cfg, fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	service := performance.NewService(performance.NewStore(pool), performance.Options{
		Location:               loc,
		WeeklyFetchConcurrency: cfg.WeeklyFetchConcurrency,
		TrendPeriods:           cfg.TrendPeriods,
	})
	dash, err := service.Dashboard(ctx, performance.DashboardRequest{
		Selector:   sel,
		DirectorID: opts.director,
		Transitive: opts.transitive,
	})
	return dash, cfg, err
}
