package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

// Package-level aggregates run on the caller's store or transaction.
// The Ledger methods open a transaction of their own.

// Sum totals userID's spending within r.
func Sum(ctx context.Context, store service.Storage, userID uuid.UUID, r model.DateRange) (model.Money, error) {
	if err := checkRange(userID, r); err != nil {
		return model.Zero(), err
	}
	return store.SumExpenses(ctx, userID, r)
}

// SumForCategory totals userID's spending in one category within r.
func SumForCategory(ctx context.Context, store service.Storage, userID uuid.UUID, categoryID int64, r model.DateRange) (model.Money, error) {
	if err := checkRange(userID, r); err != nil {
		return model.Zero(), err
	}
	return store.SumExpensesForCategory(ctx, userID, categoryID, r)
}

// Count counts userID's expenses within r.
func Count(ctx context.Context, store service.Storage, userID uuid.UUID, r model.DateRange) (int64, error) {
	if err := checkRange(userID, r); err != nil {
		return 0, err
	}
	return store.CountExpenses(ctx, userID, r)
}

// TotalsByCategory groups userID's spending within r by category.
func TotalsByCategory(ctx context.Context, store service.Storage, userID uuid.UUID, r model.DateRange) ([]model.CategoryTotal, error) {
	if err := checkRange(userID, r); err != nil {
		return nil, err
	}
	return store.CategoryTotals(ctx, userID, r)
}

// TotalsByDay returns userID's per-date spending within r, ascending.
// Dates without spending are omitted.
func TotalsByDay(ctx context.Context, store service.Storage, userID uuid.UUID, r model.DateRange) ([]model.DailyTotal, error) {
	if err := checkRange(userID, r); err != nil {
		return nil, err
	}
	return store.DailyTotals(ctx, userID, r)
}

// SumInRange totals the caller's spending within r.
func (l *Ledger) SumInRange(ctx context.Context, userID uuid.UUID, r model.DateRange) (model.Money, error) {
	total := model.Zero()
	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		var err error
		total, err = Sum(ctx, tx, userID, r)
		return err
	})
	return total, err
}

// SumInRangeForCategory totals the caller's spending in one category within r.
func (l *Ledger) SumInRangeForCategory(ctx context.Context, userID uuid.UUID, categoryID int64, r model.DateRange) (model.Money, error) {
	total := model.Zero()
	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		var err error
		total, err = SumForCategory(ctx, tx, userID, categoryID, r)
		return err
	})
	return total, err
}

// CountInRange counts the caller's expenses within r.
func (l *Ledger) CountInRange(ctx context.Context, userID uuid.UUID, r model.DateRange) (int64, error) {
	var count int64
	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		var err error
		count, err = Count(ctx, tx, userID, r)
		return err
	})
	return count, err
}

// CategoryTotals groups the caller's spending within r by category.
func (l *Ledger) CategoryTotals(ctx context.Context, userID uuid.UUID, r model.DateRange) ([]model.CategoryTotal, error) {
	var totals []model.CategoryTotal
	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		var err error
		totals, err = TotalsByCategory(ctx, tx, userID, r)
		return err
	})
	return totals, err
}

// DailyTotals returns the caller's per-date spending within r, ascending.
func (l *Ledger) DailyTotals(ctx context.Context, userID uuid.UUID, r model.DateRange) ([]model.DailyTotal, error) {
	var totals []model.DailyTotal
	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		var err error
		totals, err = TotalsByDay(ctx, tx, userID, r)
		return err
	})
	return totals, err
}

func checkRange(userID uuid.UUID, r model.DateRange) error {
	if userID == uuid.Nil {
		return common.InvalidInput("user id is required")
	}
	return ValidateRange(r)
}
