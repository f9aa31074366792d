package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/ofx"
)

func importExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import expenses from OFX/QFX statements",
		Long: `Import the debits of one or more OFX or QFX bank statements as expenses.

Every imported entry is filed under the same category and payment method.
Entries that appear in several files are imported once. Entries dated in the
future or without a positive amount are skipped.

The import runs in a single transaction: interrupt it and nothing is saved.`,
		Example: `  spent expenses import ~/Downloads/*.qfx --category Shopping --payment-method CARD
  spent expenses import statement.ofx --category 2 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("category", "", "category id or name for every imported expense (required)")
	cmd.Flags().String("payment-method", string(model.PaymentCard), "payment method for every imported expense")
	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	files := expandFiles(args)
	if len(files) == 0 {
		return common.NewUserError("no statement files found", common.ErrInvalidInput)
	}

	rawMethod, _ := cmd.Flags().GetString("payment-method")
	method, err := model.ParsePaymentMethod(rawMethod)
	if err != nil {
		return common.InvalidInput("--payment-method: %v", err)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	return withApp(cmd, func(ctx context.Context, a *app) error {
		handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "Import").
			WithHint("Nothing was saved. Run the import again when you are ready.")
		ctx = handler.HandleInterrupts(ctx)

		user, err := a.currentUser(ctx)
		if err != nil {
			return err
		}
		ref, _ := cmd.Flags().GetString("category")
		categoryID, err := a.resolveCategory(ctx, user.ID, ref)
		if err != nil {
			return err
		}

		slog.Info("Parsing statements", "files", len(files))
		entries, err := ofx.NewParser().ParseFiles(ctx, files)
		if err != nil {
			return fmt.Errorf("failed to parse statements: %w", err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No debits found in the given statements"))
			return nil
		}

		if dryRun {
			printStatementEntries(cmd, entries)
			return nil
		}

		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(entries), "Importing")
		result, err := ledger.New(a.store, a.clock).Import(ctx, user.ID, ledger.ImportRequest{
			PaymentMethod: method,
			Entries:       entries,
			CategoryID:    categoryID,
		}, func() {
			_ = bar.Add(1)
		})
		if err != nil {
			if handler.WasInterrupted() || errors.Is(err, context.Canceled) {
				return common.NewUserError("import cancelled", err)
			}
			return fmt.Errorf("failed to import statements: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d expenses from %d files", len(result.Created), len(files))))
		if result.Skipped > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Skipped %d entries (future-dated or non-positive)", result.Skipped)))
		}
		return nil
	})
}

// expandFiles resolves glob patterns; a pattern without matches is kept when
// it names an existing file.
func expandFiles(patterns []string) []string {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			slog.Warn("Invalid file pattern", "pattern", pattern, "error", err)
			continue
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	return files
}

func printStatementEntries(cmd *cobra.Command, entries []model.StatementEntry) {
	total := model.Zero()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		total = total.Add(e.Amount)
		rows = append(rows, []string{model.FormatDate(e.Date), e.Amount.String(), e.Description, e.Account})
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Date", "Amount", "Description", "Account"}, rows, 1))
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Dry run: %d entries totalling %s would be imported", len(entries), total)))
}
