package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/config"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/report"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/sheets"
)

// newReportWriter connects to the export destination.
var newReportWriter = func(ctx context.Context, config sheets.Config) (service.ReportWriter, error) {
	return sheets.NewWriter(ctx, config, slog.Default())
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly reports",
		Long: `Build a report of one month: totals, category breakdown, daily trend,
budgets and every expense. Print it here or export it to Google Sheets.`,
	}

	cmd.AddCommand(showReportCmd())
	cmd.AddCommand(exportReportCmd())
	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func buildReport(cmd *cobra.Command, fn func(ctx context.Context, r *model.MonthReport) error) error {
	year, month := monthFromFlags(cmd)

	return withApp(cmd, func(ctx context.Context, a *app) error {
		user, err := a.currentUser(ctx)
		if err != nil {
			return err
		}

		r, err := report.NewBuilder(a.store, a.clock).Build(ctx, user.ID, year, month)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return fn(ctx, r)
	})
}

func showReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a month report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return buildReport(cmd, func(_ context.Context, r *model.MonthReport) error {
				printReport(cmd.OutOrStdout(), r)
				return nil
			})
		},
	}

	monthFlags(cmd)
	return cmd
}

func printReport(w io.Writer, r *model.MonthReport) {
	fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("%s Report for %s", cli.ChartIcon, r.Month)))
	fmt.Fprintf(w, "Total spent: %s across %d expenses\n\n", cli.FormatAmount(r.Total), r.Count)

	fmt.Fprintln(w, cli.SubtitleStyle.Render("By category"))
	printBreakdown(w, r.Breakdown)

	fmt.Fprintln(w, cli.SubtitleStyle.Render("Budgets"))
	printBudgets(w, r.Budgets)

	if len(r.Expenses) == 0 {
		return
	}
	fmt.Fprintln(w, cli.SubtitleStyle.Render("Expenses"))
	rows := make([][]string, 0, len(r.Expenses))
	for _, e := range r.Expenses {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			model.FormatDate(e.Date),
			e.Amount.String(),
			e.CategoryName,
			e.DescriptionOrEmpty(),
		})
	}
	fmt.Fprintln(w, cli.RenderTable([]string{"ID", "Date", "Amount", "Category", "Description"}, rows, 0, 2))
}

func exportReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a month report to Google Sheets",
		Long: `Write a month report to the configured spreadsheet, replacing the previous
contents of its report tab.

Authenticate first with 'spent report auth', or configure a service account
with sheets.service_account_path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			useStoredToken()

			sheetsConfig, err := config.LoadSheetsConfig()
			if err != nil {
				return common.NewUserError("Google Sheets is not configured; run 'spent report auth' first", err)
			}

			return buildReport(cmd, func(ctx context.Context, r *model.MonthReport) error {
				writer, err := newReportWriter(ctx, *sheetsConfig)
				if err != nil {
					return fmt.Errorf("failed to connect to Google Sheets: %w", err)
				}

				slog.Info("Exporting report", "month", r.Month.String(), "expenses", len(r.Expenses))
				if err := writer.Write(ctx, r); err != nil {
					return fmt.Errorf("failed to export report: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %s to %q", r.Month, sheetsConfig.SpreadsheetName)))
				return nil
			})
		},
	}

	monthFlags(cmd)
	return cmd
}

// useStoredToken fills sheets.refresh_token from the token file written by
// 'spent report auth' when no refresh token is configured.
func useStoredToken() {
	if viper.GetString("sheets.refresh_token") != "" {
		return
	}
	token, err := sheets.LoadToken(config.TokenFile())
	if err != nil {
		slog.Debug("No stored Google token", "file", config.TokenFile(), "error", err)
		return
	}
	if token.RefreshToken != "" {
		viper.Set("sheets.refresh_token", token.RefreshToken)
	}
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets export",
		Long: `Run the browser consent flow for a Google OAuth2 desktop client and store
the resulting refresh token in the config file.`,
		Args: cobra.NoArgs,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client id (default: sheets.client_id)")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret (default: sheets.client_secret)")
	cmd.Flags().String("callback", "localhost:8085", "address for the local OAuth2 redirect listener")
	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")
	if v, _ := cmd.Flags().GetString("client-id"); v != "" {
		clientID = v
	}
	if v, _ := cmd.Flags().GetString("client-secret"); v != "" {
		clientSecret = v
	}
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if clientID == "" || clientSecret == "" {
		return common.NewUserError("OAuth2 credentials not found; set sheets.client_id and sheets.client_secret or pass --client-id and --client-secret", common.ErrMissingConfig)
	}

	callback, _ := cmd.Flags().GetString("callback")
	tokenFile := config.TokenFile()
	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.AuthenticateOAuth2Interactive(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackAddr: callback,
	}, func(url string) {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Opening your browser to authorize access. If it does not open, visit:"))
		fmt.Fprintln(cmd.OutOrStdout(), url)
		openBrowser(url)
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	viper.Set("sheets.client_id", clientID)
	viper.Set("sheets.client_secret", clientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)
	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Could not save the refresh token to the config file; it is still stored in "+tokenFile))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authorized"))
	return nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "spent", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}

// openBrowser tries to open url in the default browser.
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start() //nolint:gosec
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec
	case "darwin":
		err = exec.Command("open", url).Start() //nolint:gosec
	}
	if err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
