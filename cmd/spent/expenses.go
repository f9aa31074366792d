package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/tui"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "exp"},
		Short:   "Record and browse expenses",
		Long: `Add, change and remove expenses, list them page by page, or browse them
interactively.

Categories may be given by id or by name.`,
	}

	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(showExpenseCmd())
	cmd.AddCommand(updateExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())
	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(browseExpensesCmd())
	cmd.AddCommand(importExpensesCmd())

	return cmd
}

func expenseFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("amount", "", "amount, e.g. 12.50")
	cmd.Flags().String("category", "", "category id or name")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().String("payment-method", string(model.PaymentCash), "CASH, CARD, UPI, NET_BANKING, BANK_TRANSFER or OTHER")
	cmd.Flags().String("description", "", "optional note")
}

func addExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Example: `  spent expenses add --amount 12.50 --category Food --description "Lunch"
  spent expenses add --amount 40 --category 3 --date 2025-03-01 --payment-method CARD`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				l := ledger.New(a.store, a.clock)
				in := ledger.ExpenseInput{Date: l.Today()}
				if err := applyExpenseFlags(ctx, cmd, a, user.ID, &in, true); err != nil {
					return err
				}

				expense, err := l.Create(ctx, user.ID, in)
				if err != nil {
					return fmt.Errorf("failed to add expense: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s in %s (id %d)",
					cli.FormatAmount(expense.Amount), expense.CategoryName, expense.ID)))
				return nil
			})
		},
	}

	expenseFieldFlags(cmd)
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

// applyExpenseFlags copies flags onto in. On create every field is read;
// on update only the flags the user set.
func applyExpenseFlags(ctx context.Context, cmd *cobra.Command, a *app, userID uuid.UUID, in *ledger.ExpenseInput, all bool) error {
	set := func(name string) bool { return all || cmd.Flags().Changed(name) }

	if set("amount") {
		amount, err := parseMoneyFlag(cmd, "amount")
		if err != nil {
			return err
		}
		in.Amount = amount
	}
	if set("category") {
		ref, _ := cmd.Flags().GetString("category")
		id, err := a.resolveCategory(ctx, userID, ref)
		if err != nil {
			return err
		}
		in.CategoryID = id
	}
	if cmd.Flags().Changed("date") {
		date, err := parseDateFlag(cmd, "date")
		if err != nil {
			return err
		}
		in.Date = *date
	}
	if set("payment-method") {
		raw, _ := cmd.Flags().GetString("payment-method")
		method, err := model.ParsePaymentMethod(raw)
		if err != nil {
			return common.InvalidInput("--payment-method: %v", err)
		}
		in.PaymentMethod = method
	}
	if cmd.Flags().Changed("description") {
		description, _ := cmd.Flags().GetString("description")
		in.Description = &description
	}
	return nil
}

func showExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "expense")
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				expense, err := ledger.New(a.store, a.clock).Get(ctx, user.ID, id)
				if err != nil {
					return fmt.Errorf("failed to load expense: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderExpense(expense))
				return nil
			})
		},
	}
}

func renderExpense(e *model.Expense) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render("Amount:"), cli.FormatAmount(e.Amount))
	fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render("Date:"), model.FormatDate(e.Date))
	fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render("Category:"), e.CategoryName)
	fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render("Paid with:"), e.PaymentMethod)
	if e.Description != nil {
		fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render("Note:"), *e.Description)
	}
	fmt.Fprintf(&b, "%s %s", cli.BoldStyle.Render("Updated:"), e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	return cli.RenderBox(fmt.Sprintf("Expense #%d", e.ID), b.String())
}

func updateExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an expense",
		Long:  `Change an expense. Fields whose flags are not given keep their current value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "expense")
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				l := ledger.New(a.store, a.clock)
				current, err := l.Get(ctx, user.ID, id)
				if err != nil {
					return fmt.Errorf("failed to load expense: %w", err)
				}

				in := ledger.ExpenseInput{
					Date:          current.Date,
					Description:   current.Description,
					Amount:        current.Amount,
					PaymentMethod: current.PaymentMethod,
					CategoryID:    current.CategoryID,
				}
				if err := applyExpenseFlags(ctx, cmd, a, user.ID, &in, false); err != nil {
					return err
				}

				updated, err := l.Update(ctx, user.ID, id, in)
				if err != nil {
					return fmt.Errorf("failed to update expense: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated expense %d", updated.ID)))
				fmt.Fprintln(cmd.OutOrStdout(), renderExpense(updated))
				return nil
			})
		},
	}

	expenseFieldFlags(cmd)
	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "expense")
			if err != nil {
				return err
			}
			skipConfirm, _ := cmd.Flags().GetBool("yes")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				l := ledger.New(a.store, a.clock)
				expense, err := l.Get(ctx, user.ID, id)
				if err != nil {
					return fmt.Errorf("failed to load expense: %w", err)
				}

				if !skipConfirm {
					question := fmt.Sprintf("Delete %s on %s (%s)?", cli.FormatAmount(expense.Amount),
						model.FormatDate(expense.Date), expense.CategoryName)
					ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(), question)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
						return nil
					}
				}

				if err := l.Delete(ctx, user.ID, id); err != nil {
					return fmt.Errorf("failed to delete expense: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted expense %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "delete without asking")
	return cmd
}

func queryFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", "", "only this category (id or name)")
	cmd.Flags().String("from", "", "earliest date, YYYY-MM-DD")
	cmd.Flags().String("to", "", "latest date, YYYY-MM-DD")
	cmd.Flags().Int("page", 0, "page number, starting at 0")
	cmd.Flags().Int("size", ledger.DefaultPageSize, "expenses per page (max 100)")
	cmd.Flags().String("sort", string(service.SortByDate), "sort by date, amount or created_at")
	cmd.Flags().String("direction", string(service.Descending), "asc or desc")
}

func queryFromFlags(ctx context.Context, cmd *cobra.Command, a *app, userID uuid.UUID) (ledger.Query, error) {
	var q ledger.Query

	if ref, _ := cmd.Flags().GetString("category"); ref != "" {
		id, err := a.resolveCategory(ctx, userID, ref)
		if err != nil {
			return q, err
		}
		q.CategoryID = &id
	}

	var err error
	if q.From, err = parseDateFlag(cmd, "from"); err != nil {
		return q, err
	}
	if q.To, err = parseDateFlag(cmd, "to"); err != nil {
		return q, err
	}

	q.Page, _ = cmd.Flags().GetInt("page")
	q.PageSize, _ = cmd.Flags().GetInt("size")

	sortBy, _ := cmd.Flags().GetString("sort")
	if q.SortKey, err = ledger.ParseSortKey(sortBy); err != nil {
		return q, err
	}
	direction, _ := cmd.Flags().GetString("direction")
	if q.Direction, err = ledger.ParseDirection(direction); err != nil {
		return q, err
	}
	return q, nil
}

func listExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				q, err := queryFromFlags(ctx, cmd, a, user.ID)
				if err != nil {
					return err
				}

				page, err := ledger.New(a.store, a.clock).List(ctx, user.ID, q)
				if err != nil {
					return fmt.Errorf("failed to list expenses: %w", err)
				}

				printExpensePage(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}

	queryFlags(cmd)
	return cmd
}

func printExpensePage(w io.Writer, page *service.ExpensePage) {
	if page.TotalItems == 0 {
		fmt.Fprintln(w, cli.InfoStyle.Render("No expenses match."))
		return
	}

	rows := make([][]string, 0, len(page.Items))
	for _, e := range page.Items {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			model.FormatDate(e.Date),
			e.Amount.String(),
			e.CategoryName,
			string(e.PaymentMethod),
			e.DescriptionOrEmpty(),
		})
	}
	fmt.Fprintln(w, cli.RenderTable([]string{"ID", "Date", "Amount", "Category", "Method", "Description"}, rows, 0, 2))
	fmt.Fprintln(w, cli.SubtleStyle.Render(fmt.Sprintf("Page %d of %d · %d expenses",
		page.Page+1, max(page.TotalPages, 1), page.TotalItems)))
}

func browseExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse expenses interactively",
		Long: `Open a full-screen table of your expenses. Page with n/p, change the sort
column with o and the direction with s, and quit with q.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noAlt, _ := cmd.Flags().GetBool("inline")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				q, err := queryFromFlags(ctx, cmd, a, user.ID)
				if err != nil {
					return err
				}

				l := ledger.New(a.store, a.clock)
				fetcher := tui.PageFetcherFunc(func(ctx context.Context, q ledger.Query) (*service.ExpensePage, error) {
					return l.List(ctx, user.ID, q)
				})

				return tui.Run(ctx, fetcher, tui.WithQuery(q), tui.WithAltScreen(!noAlt))
			})
		},
	}

	queryFlags(cmd)
	cmd.Flags().Bool("inline", false, "draw in the terminal instead of the alternate screen")
	return cmd
}
