package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/dashboard"
	"github.com/Veraticus/spent/internal/model"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Summaries of your spending",
		Long: `Show month-to-date totals, where the money went by category, how
spending moved day by day, and how this month compares with the last.

Running 'spent dashboard' alone prints the stats and the comparison.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDashboard(cmd, func(ctx context.Context, agg *dashboard.Aggregator, userID uuid.UUID) error {
				if err := printStats(ctx, cmd.OutOrStdout(), agg, userID); err != nil {
					return err
				}
				return printComparison(ctx, cmd.OutOrStdout(), agg, userID)
			})
		},
	}

	cmd.AddCommand(statsCmd())
	cmd.AddCommand(breakdownCmd())
	cmd.AddCommand(trendCmd())
	cmd.AddCommand(compareCmd())

	return cmd
}

func withDashboard(cmd *cobra.Command, fn func(ctx context.Context, agg *dashboard.Aggregator, userID uuid.UUID) error) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		user, err := a.currentUser(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, dashboard.NewAggregator(a.store, a.clock), user.ID)
	})
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Month-to-date and today's totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDashboard(cmd, func(ctx context.Context, agg *dashboard.Aggregator, userID uuid.UUID) error {
				return printStats(ctx, cmd.OutOrStdout(), agg, userID)
			})
		},
	}
}

func printStats(ctx context.Context, w io.Writer, agg *dashboard.Aggregator, userID uuid.UUID) error {
	stats, err := agg.Stats(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %s\n", "This month:", cli.FormatAmount(stats.TotalThisMonth))
	fmt.Fprintf(&b, "%-16s %s\n", "Today:", cli.FormatAmount(stats.TotalToday))
	fmt.Fprintf(&b, "%-16s %s\n", "Daily average:", cli.FormatAmount(stats.AverageDaily))
	fmt.Fprintf(&b, "%-16s %d", "Expenses:", stats.TransactionCount)
	fmt.Fprintln(w, cli.RenderBox(fmt.Sprintf("%s %s so far", cli.ChartIcon, agg.CurrentMonth()), b.String()))
	return nil
}

func breakdownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Spending per category for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, month := monthFromFlags(cmd)

			return withDashboard(cmd, func(ctx context.Context, agg *dashboard.Aggregator, userID uuid.UUID) error {
				ym, err := agg.ResolveMonth(year, month)
				if err != nil {
					return err
				}
				spending, err := agg.CategoryBreakdown(ctx, userID, ym.Year, int(ym.Month))
				if err != nil {
					return fmt.Errorf("failed to compute breakdown: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Spending by category, "+ym.String()))
				printBreakdown(cmd.OutOrStdout(), spending)
				return nil
			})
		},
	}

	monthFlags(cmd)
	return cmd
}

func printBreakdown(w io.Writer, spending []model.CategorySpending) {
	if len(spending) == 0 {
		fmt.Fprintln(w, cli.InfoStyle.Render("Nothing spent in this month."))
		return
	}

	rows := make([][]string, 0, len(spending))
	for _, s := range spending {
		rows = append(rows, []string{s.CategoryName, s.Amount.String(), cli.UsageBar(s.Percentage, 20)})
	}
	fmt.Fprintln(w, cli.RenderTable([]string{"Category", "Amount", "Share"}, rows, 1))
}

func trendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Daily totals for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, month := monthFromFlags(cmd)

			return withDashboard(cmd, func(ctx context.Context, agg *dashboard.Aggregator, userID uuid.UUID) error {
				ym, err := agg.ResolveMonth(year, month)
				if err != nil {
					return err
				}
				points, err := agg.DailyTrend(ctx, userID, ym.Year, int(ym.Month))
				if err != nil {
					return fmt.Errorf("failed to compute trend: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Daily spending, "+ym.String()))
				printTrend(cmd.OutOrStdout(), points)
				return nil
			})
		},
	}

	monthFlags(cmd)
	return cmd
}

// printTrend draws one bar per day, scaled to the busiest day.
func printTrend(w io.Writer, points []model.DailyTrend) {
	peak := model.Zero()
	for _, p := range points {
		if p.Amount.Cmp(peak) > 0 {
			peak = p.Amount
		}
	}

	const width = 30
	for _, p := range points {
		filled := 0
		if peak.IsPositive() {
			filled = int(p.Amount.Cents() * width / peak.Cents())
		}
		fmt.Fprintf(w, "%s %s %10s\n",
			cli.SubtleStyle.Render(model.FormatDate(p.Date)),
			cli.InfoStyle.Render(strings.Repeat("▇", filled)+strings.Repeat(" ", width-filled)),
			p.Amount)
	}
}

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "This month against last month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDashboard(cmd, func(ctx context.Context, agg *dashboard.Aggregator, userID uuid.UUID) error {
				return printComparison(ctx, cmd.OutOrStdout(), agg, userID)
			})
		},
	}
}

func printComparison(ctx context.Context, w io.Writer, agg *dashboard.Aggregator, userID uuid.UUID) error {
	cmp, err := agg.MonthlyComparison(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to compare months: %w", err)
	}

	current := agg.CurrentMonth()
	fmt.Fprintf(w, "%s  %s\n", current, cli.FormatAmount(cmp.CurrentMonth))
	fmt.Fprintf(w, "%s  %s\n", current.Previous(), cli.FormatAmount(cmp.PreviousMonth))
	fmt.Fprintf(w, "Change:   %s\n", cli.FormatChange(*cmp))
	return nil
}
