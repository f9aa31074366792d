package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/model"
)

// SumExpenses totals a user's expenses dated within r. Zero when nothing matches.
func (s queries) SumExpenses(ctx context.Context, userID uuid.UUID, r model.DateRange) (model.Money, error) {
	if err := validateAggregate(ctx, userID, r); err != nil {
		return model.Zero(), err
	}

	var cents int64
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses
		WHERE user_id = ? AND expense_date BETWEEN ? AND ?`,
		userID, model.FormatDate(r.Start), model.FormatDate(r.End)).Scan(&cents)
	if err != nil {
		return model.Zero(), fmt.Errorf("failed to sum expenses: %w", err)
	}
	return model.MoneyFromCents(cents), nil
}

// SumExpensesForCategory totals a user's expenses in one category dated within r.
func (s queries) SumExpensesForCategory(ctx context.Context, userID uuid.UUID, categoryID int64, r model.DateRange) (model.Money, error) {
	if err := validateAggregate(ctx, userID, r); err != nil {
		return model.Zero(), err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return model.Zero(), err
	}

	var cents int64
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses
		WHERE user_id = ? AND category_id = ? AND expense_date BETWEEN ? AND ?`,
		userID, categoryID, model.FormatDate(r.Start), model.FormatDate(r.End)).Scan(&cents)
	if err != nil {
		return model.Zero(), fmt.Errorf("failed to sum category expenses: %w", err)
	}
	return model.MoneyFromCents(cents), nil
}

// CountExpenses counts a user's expenses dated within r.
func (s queries) CountExpenses(ctx context.Context, userID uuid.UUID, r model.DateRange) (int64, error) {
	if err := validateAggregate(ctx, userID, r); err != nil {
		return 0, err
	}

	var count int64
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM expenses
		WHERE user_id = ? AND expense_date BETWEEN ? AND ?`,
		userID, model.FormatDate(r.Start), model.FormatDate(r.End)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// CategoryTotals groups a user's spending within r by category, largest first.
// Categories with no spending are omitted.
func (s queries) CategoryTotals(ctx context.Context, userID uuid.UUID, r model.DateRange) ([]model.CategoryTotal, error) {
	if err := validateAggregate(ctx, userID, r); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT c.id, c.name, c.color, SUM(e.amount_cents) AS total
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ? AND e.expense_date BETWEEN ? AND ?
		GROUP BY c.id, c.name, c.color
		ORDER BY total DESC, c.id ASC`,
		userID, model.FormatDate(r.Start), model.FormatDate(r.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.CategoryTotal
	for rows.Next() {
		var (
			total model.CategoryTotal
			cents int64
		)
		if err := rows.Scan(&total.CategoryID, &total.Name, &total.Color, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		total.Amount = model.MoneyFromCents(cents)
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

// DailyTotals returns per-date spending within r in ascending date order.
// Dates without spending are omitted.
func (s queries) DailyTotals(ctx context.Context, userID uuid.UUID, r model.DateRange) ([]model.DailyTotal, error) {
	if err := validateAggregate(ctx, userID, r); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT expense_date, SUM(amount_cents)
		FROM expenses
		WHERE user_id = ? AND expense_date BETWEEN ? AND ?
		GROUP BY expense_date
		ORDER BY expense_date ASC`,
		userID, model.FormatDate(r.Start), model.FormatDate(r.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.DailyTotal
	for rows.Next() {
		var (
			date  string
			cents int64
		)
		if err := rows.Scan(&date, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		day, err := model.ParseDate(date)
		if err != nil {
			return nil, err
		}
		totals = append(totals, model.DailyTotal{Date: day, Amount: model.MoneyFromCents(cents)})
	}
	return totals, rows.Err()
}

func validateAggregate(ctx context.Context, userID uuid.UUID, r model.DateRange) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}
	return validateDateRange(r)
}
