package sheets

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/model"
)

// ExpenseRow represents a single row of the expense detail section.
type ExpenseRow struct {
	Date          string
	Description   string
	Category      string
	PaymentMethod string
	Amount        decimal.Decimal
}

// CategoryRow represents a single row of the category breakdown.
type CategoryRow struct {
	Name       string
	Amount     decimal.Decimal
	Percentage float64
}

// BudgetRow represents a single row of the budget section.
type BudgetRow struct {
	Category       string
	Limit          decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	PercentageUsed float64
}

// ReportRows holds a month report flattened into spreadsheet sections.
type ReportRows struct {
	Title      string
	Total      decimal.Decimal
	Categories []CategoryRow
	Budgets    []BudgetRow
	Expenses   []ExpenseRow
	Count      int64
	Days       int
}

// NewReportRows flattens report into spreadsheet rows.
func NewReportRows(report *model.MonthReport) ReportRows {
	rows := ReportRows{
		Title:      report.Month.Label(),
		Total:      report.Total.Decimal(),
		Count:      report.Count,
		Days:       len(report.Trend),
		Categories: make([]CategoryRow, 0, len(report.Breakdown)),
		Budgets:    make([]BudgetRow, 0, len(report.Budgets)),
		Expenses:   make([]ExpenseRow, 0, len(report.Expenses)),
	}

	for _, c := range report.Breakdown {
		rows.Categories = append(rows.Categories, CategoryRow{
			Name:       c.CategoryName,
			Amount:     c.Amount.Decimal(),
			Percentage: c.Percentage,
		})
	}
	for _, b := range report.Budgets {
		rows.Budgets = append(rows.Budgets, BudgetRow{
			Category:       b.CategoryName,
			Limit:          b.MonthlyLimit.Decimal(),
			Spent:          b.TotalSpent.Decimal(),
			Remaining:      b.Remaining.Decimal(),
			PercentageUsed: b.PercentageUsed,
		})
	}
	for _, e := range report.Expenses {
		rows.Expenses = append(rows.Expenses, ExpenseRow{
			Date:          model.FormatDate(e.Date),
			Description:   e.DescriptionOrEmpty(),
			Category:      e.CategoryName,
			PaymentMethod: string(e.PaymentMethod),
			Amount:        e.Amount.Decimal(),
		})
	}
	return rows
}
