package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/budget"
	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/dashboard"
	"github.com/Veraticus/spent/internal/model"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Manage monthly category budgets",
		Long: `Set a spending limit per category and month, and see how much of it
has been used.

A category has at most one budget per month.`,
	}

	cmd.AddCommand(addBudgetCmd())
	cmd.AddCommand(listBudgetsCmd())
	cmd.AddCommand(updateBudgetCmd())
	cmd.AddCommand(deleteBudgetCmd())

	return cmd
}

func addBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Set a budget for a category",
		Example: `  spent budgets add --category Food --limit 500 --year 2025 --month 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := parseMoneyFlag(cmd, "limit")
			if err != nil {
				return err
			}
			year, month := monthFromFlags(cmd)

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}
				ref, _ := cmd.Flags().GetString("category")
				categoryID, err := a.resolveCategory(ctx, user.ID, ref)
				if err != nil {
					return err
				}

				ym, err := dashboard.NewAggregator(a.store, a.clock).ResolveMonth(year, month)
				if err != nil {
					return err
				}

				view, err := budget.NewTracker(a.store, a.clock).Create(ctx, user.ID, categoryID, limit, ym.Year, int(ym.Month))
				if err != nil {
					return fmt.Errorf("failed to create budget: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Budget %d: %s for %s in %s",
					view.ID, cli.FormatAmount(view.MonthlyLimit), view.CategoryName, view.MonthKey)))
				fmt.Fprintln(cmd.OutOrStdout(), "  "+cli.UsageBar(view.PercentageUsed, 0))
				return nil
			})
		},
	}

	cmd.Flags().String("category", "", "category id or name")
	cmd.Flags().String("limit", "", "monthly limit, e.g. 500")
	monthFlags(cmd)
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("limit")
	return cmd
}

func listBudgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show budgets and their usage for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, month := monthFromFlags(cmd)

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				ym, err := dashboard.NewAggregator(a.store, a.clock).ResolveMonth(year, month)
				if err != nil {
					return err
				}

				views, err := budget.NewTracker(a.store, a.clock).ListForMonth(ctx, user.ID, ym.Year, int(ym.Month))
				if err != nil {
					return fmt.Errorf("failed to list budgets: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("%s Budgets for %s", cli.WalletIcon, ym)))
				printBudgets(cmd.OutOrStdout(), views)
				return nil
			})
		},
	}

	monthFlags(cmd)
	return cmd
}

func printBudgets(w io.Writer, views []model.BudgetView) {
	if len(views) == 0 {
		fmt.Fprintln(w, cli.InfoStyle.Render("No budgets for this month."))
		return
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.CategoryName,
			v.MonthlyLimit.String(),
			v.TotalSpent.String(),
			cli.FormatRemaining(v),
			cli.UsageBar(v.PercentageUsed, 20),
		})
	}
	fmt.Fprintln(w, cli.RenderTable([]string{"ID", "Category", "Limit", "Spent", "Remaining", "Used"}, rows, 0, 2, 3, 4))
}

func updateBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a budget's limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "budget")
			if err != nil {
				return err
			}
			limit, err := parseMoneyFlag(cmd, "limit")
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				view, err := budget.NewTracker(a.store, a.clock).Update(ctx, user.ID, id, limit)
				if err != nil {
					return fmt.Errorf("failed to update budget: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Budget %d now %s, %s remaining",
					view.ID, cli.FormatAmount(view.MonthlyLimit), cli.FormatRemaining(*view))))
				return nil
			})
		},
	}

	cmd.Flags().String("limit", "", "new monthly limit")
	_ = cmd.MarkFlagRequired("limit")
	return cmd
}

func deleteBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "budget")
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				if err := budget.NewTracker(a.store, a.clock).Delete(ctx, user.ID, id); err != nil {
					return fmt.Errorf("failed to delete budget: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted budget %d", id)))
				return nil
			})
		},
	}
}
