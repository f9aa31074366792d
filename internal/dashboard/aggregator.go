// Package dashboard derives read-only spending summaries from recorded expenses.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

// Aggregator computes dashboard figures relative to its clock.
type Aggregator struct {
	store service.Storage
	clock common.Clock
}

// NewAggregator creates an aggregator backed by store.
func NewAggregator(store service.Storage, clock common.Clock) *Aggregator {
	return &Aggregator{store: store, clock: clock}
}

// CurrentMonth returns the month containing today.
func (a *Aggregator) CurrentMonth() model.YearMonth {
	return model.YearMonthOf(a.today())
}

// ResolveMonth turns optional (year, month) arguments into a month. Both zero
// selects the current month; exactly one zero is rejected.
func (a *Aggregator) ResolveMonth(year, month int) (model.YearMonth, error) {
	if year == 0 && month == 0 {
		return a.CurrentMonth(), nil
	}
	if year == 0 || month == 0 {
		return model.YearMonth{}, common.InvalidInput("year and month must be given together")
	}
	ym, err := model.NewYearMonth(year, month)
	if err != nil {
		return model.YearMonth{}, common.InvalidInput("%v", err)
	}
	return ym, nil
}

// Stats returns month-to-date and today's totals for the caller.
func (a *Aggregator) Stats(ctx context.Context, userID uuid.UUID) (*model.DashboardStats, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}

	today := a.today()
	monthToDate := model.DateRange{Start: model.YearMonthOf(today).FirstDay(), End: today}

	stats := &model.DashboardStats{
		TotalThisMonth: model.Zero(),
		TotalToday:     model.Zero(),
		AverageDaily:   model.Zero(),
	}
	err := service.WithTx(ctx, a.store, func(tx service.Transaction) error {
		var err error
		if stats.TotalThisMonth, err = ledger.Sum(ctx, tx, userID, monthToDate); err != nil {
			return err
		}
		if stats.TotalToday, err = ledger.Sum(ctx, tx, userID, model.DayRange(today)); err != nil {
			return err
		}
		stats.TransactionCount, err = ledger.Count(ctx, tx, userID, monthToDate)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !stats.TotalThisMonth.IsZero() {
		stats.AverageDaily = stats.TotalThisMonth.DivRound(int64(today.Day()))
	}
	return stats, nil
}

// CategoryBreakdown splits a month's spending by category, largest first.
// Categories without spending are omitted.
func (a *Aggregator) CategoryBreakdown(ctx context.Context, userID uuid.UUID, year, month int) ([]model.CategorySpending, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}
	ym, err := a.ResolveMonth(year, month)
	if err != nil {
		return nil, err
	}

	var totals []model.CategoryTotal
	err = service.WithTx(ctx, a.store, func(tx service.Transaction) error {
		var err error
		totals, err = ledger.TotalsByCategory(ctx, tx, userID, ym.Range())
		return err
	})
	if err != nil {
		return nil, err
	}
	return Breakdown(totals), nil
}

// Breakdown converts category totals into percentage shares of their sum.
// The order of totals is kept.
func Breakdown(totals []model.CategoryTotal) []model.CategorySpending {
	grand := model.Zero()
	for _, t := range totals {
		grand = grand.Add(t.Amount)
	}

	spending := make([]model.CategorySpending, 0, len(totals))
	for _, t := range totals {
		spending = append(spending, model.CategorySpending{
			CategoryID:    t.CategoryID,
			CategoryName:  t.Name,
			CategoryColor: t.Color,
			Amount:        t.Amount,
			Percentage:    model.Percentage(t.Amount, grand),
		})
	}
	return spending
}

// DailyTrend returns the caller's per-day spending for a month in ascending
// date order. Days without spending are omitted.
func (a *Aggregator) DailyTrend(ctx context.Context, userID uuid.UUID, year, month int) ([]model.DailyTrend, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}
	ym, err := a.ResolveMonth(year, month)
	if err != nil {
		return nil, err
	}

	var totals []model.DailyTotal
	err = service.WithTx(ctx, a.store, func(tx service.Transaction) error {
		var err error
		totals, err = ledger.TotalsByDay(ctx, tx, userID, ym.Range())
		return err
	})
	if err != nil {
		return nil, err
	}

	trend := make([]model.DailyTrend, 0, len(totals))
	for _, t := range totals {
		trend = append(trend, model.DailyTrend{Date: t.Date, Amount: t.Amount})
	}
	return trend, nil
}

// MonthlyComparison compares the current month's spending with the previous month's.
func (a *Aggregator) MonthlyComparison(ctx context.Context, userID uuid.UUID) (*model.MonthlyComparison, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}

	current := a.CurrentMonth()
	var cur, prev model.Money
	err := service.WithTx(ctx, a.store, func(tx service.Transaction) error {
		var err error
		if cur, err = ledger.Sum(ctx, tx, userID, current.Range()); err != nil {
			return err
		}
		prev, err = ledger.Sum(ctx, tx, userID, current.Previous().Range())
		return err
	})
	if err != nil {
		return nil, err
	}

	cmp := model.CompareMonths(cur, prev)
	return &cmp, nil
}

func (a *Aggregator) today() time.Time {
	return model.DateOf(a.clock.Now())
}
