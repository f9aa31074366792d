package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
)

// Column layout of the expense detail section.
const (
	columnCount    = 5
	amountColumn   = 4
	reportSheetTab = "Report"
)

// Writer publishes month reports to a Google spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Write replaces the report tab's contents with report.
func (w *Writer) Write(ctx context.Context, report *model.MonthReport) error {
	w.logger.Info("starting report export",
		"month", report.Month.Key(),
		"expenses", len(report.Expenses))

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, err = w.getOrCreateSpreadsheet(ctx)
		return err
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if err := common.WithRetry(ctx, func() error {
		return w.clearSheet(ctx, spreadsheetID)
	}, retryOpts); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := w.prepareReportData(NewReportRows(report))

	for start := 0; start < len(values); start += w.config.BatchSize {
		end := min(start+w.config.BatchSize, len(values))
		err := common.WithRetry(ctx, func() error {
			return w.writeBatch(ctx, spreadsheetID, start, values[start:end])
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write data: %w", err)
		}
	}

	if w.config.EnableFormatting {
		err := common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, len(values))
		}, retryOpts)
		if err != nil {
			// Data is already written
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))
	return nil
}

// createSheetsService authenticates with a service account key or an OAuth2 refresh token.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := newOAuthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", classifyAPIError(fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err))
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: reportSheetTab}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", classifyAPIError(fmt.Errorf("unable to create spreadsheet: %w", err))
	}

	// Later exports reuse the new spreadsheet
	w.config.SpreadsheetID = created.SpreadsheetId
	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return classifyAPIError(err)
}

// prepareReportData lays the report out as rows: title, summary, category
// breakdown, budgets, then every expense.
func (w *Writer) prepareReportData(rows ReportRows) [][]any {
	estimatedRows := 14 + len(rows.Categories) + len(rows.Budgets) + len(rows.Expenses)
	values := make([][]any, 0, estimatedRows)

	values = append(values,
		[]any{"Spending Report", rows.Title},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Spent", money(rows.Total)},
		[]any{"Expenses", rows.Count},
		[]any{"Days With Spending", rows.Days},
		[]any{},
		[]any{"Category Breakdown"},
		[]any{"Category", "Share", "", "", "Amount"},
	)
	for _, c := range rows.Categories {
		values = append(values, []any{c.Name, percent(c.Percentage), "", "", money(c.Amount)})
	}

	if len(rows.Budgets) > 0 {
		values = append(values,
			[]any{},
			[]any{"Budgets"},
			[]any{"Category", "Limit", "Spent", "Used", "Remaining"},
		)
		for _, b := range rows.Budgets {
			values = append(values, []any{
				b.Category,
				money(b.Limit),
				money(b.Spent),
				percent(b.PercentageUsed),
				money(b.Remaining),
			})
		}
	}

	values = append(values,
		[]any{},
		[]any{"Expense Details"},
		[]any{"Date", "Description", "Category", "Payment Method", "Amount"},
	)
	for _, e := range rows.Expenses {
		values = append(values, []any{e.Date, e.Description, e.Category, e.PaymentMethod, money(e.Amount)})
	}

	return values
}

func (w *Writer) writeBatch(ctx context.Context, spreadsheetID string, start int, batch [][]any) error {
	rangeStr := fmt.Sprintf("A%d", start+1)
	_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return classifyAPIError(fmt.Errorf("failed to write batch starting at row %d: %w", start+1, err))
	}

	w.logger.Debug("wrote batch", "start_row", start+1, "rows", len(batch))
	return nil
}

// formattingRequests builds the batch update applied after the data is written.
func (w *Writer) formattingRequests(totalRows int) []*sheets.Request {
	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: 2},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16}},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					StartRowIndex:    0,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: amountColumn,
					EndColumnIndex:   amountColumn + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: w.config.CurrencyPattern},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{Dimension: "COLUMNS", StartIndex: 0, EndIndex: columnCount},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{GridProperties: &sheets.GridProperties{FrozenRowCount: 1}},
				Fields:     "gridProperties.frozenRowCount",
			},
		},
	}
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, totalRows int) error {
	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{Requests: w.formattingRequests(totalRows)}
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return classifyAPIError(err)
}

// classifyAPIError marks client errors as final and rate limiting as ErrRateLimit
// so WithRetry only retries what can succeed later.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return &common.RetryableError{Err: err, Retryable: false}
	default:
		return err
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(model.MoneyScale)
}

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}
