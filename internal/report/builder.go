// Package report assembles a complete picture of one user's month for
// printing or exporting.
package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/budget"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/dashboard"
	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

// Builder gathers month reports from the domain services.
type Builder struct {
	ledger    *ledger.Ledger
	tracker   *budget.Tracker
	dashboard *dashboard.Aggregator
	clock     common.Clock
}

// NewBuilder wires a report builder over a single store.
func NewBuilder(store service.Storage, clock common.Clock) *Builder {
	return &Builder{
		ledger:    ledger.New(store, clock),
		tracker:   budget.NewTracker(store, clock),
		dashboard: dashboard.NewAggregator(store, clock),
		clock:     clock,
	}
}

// Build collects totals, breakdown, trend, budgets and every expense of the
// month. year and month of zero select the current month.
func (b *Builder) Build(ctx context.Context, userID uuid.UUID, year, month int) (*model.MonthReport, error) {
	ym, err := b.dashboard.ResolveMonth(year, month)
	if err != nil {
		return nil, err
	}

	breakdown, err := b.dashboard.CategoryBreakdown(ctx, userID, ym.Year, int(ym.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to build category breakdown: %w", err)
	}
	trend, err := b.dashboard.DailyTrend(ctx, userID, ym.Year, int(ym.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to build daily trend: %w", err)
	}
	budgets, err := b.tracker.ListForMonth(ctx, userID, ym.Year, int(ym.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	expenses, err := b.allExpenses(ctx, userID, ym)
	if err != nil {
		return nil, err
	}

	total := model.Zero()
	for _, s := range breakdown {
		total = total.Add(s.Amount)
	}

	report := &model.MonthReport{
		GeneratedAt: b.clock.Now().UTC(),
		Month:       ym,
		Total:       total,
		Count:       int64(len(expenses)),
		Breakdown:   breakdown,
		Trend:       trend,
		Budgets:     budgets,
		Expenses:    expenses,
	}
	slog.Debug("built month report", "user", userID, "month", ym.Key(), "expenses", report.Count)
	return report, nil
}

func (b *Builder) allExpenses(ctx context.Context, userID uuid.UUID, ym model.YearMonth) ([]model.Expense, error) {
	r := ym.Range()
	var expenses []model.Expense
	for page := 0; ; page++ {
		result, err := b.ledger.List(ctx, userID, ledger.Query{
			From:      &r.Start,
			To:        &r.End,
			SortKey:   service.SortByDate,
			Direction: service.Descending,
			Page:      page,
			PageSize:  ledger.MaxPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list expenses page %d: %w", page, err)
		}
		expenses = append(expenses, result.Items...)
		if page+1 >= result.TotalPages {
			return expenses, nil
		}
	}
}
