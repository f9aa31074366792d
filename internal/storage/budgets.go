package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/model"
)

const budgetColumns = `id, user_id, category_id, limit_cents, month_key, created_at, updated_at`

// CreateBudget inserts a budget and sets its ID. A second budget for the same
// (user, category, month) fails with common.ErrConflict.
func (s queries) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = time.Now().UTC()
	}
	if budget.UpdatedAt.IsZero() {
		budget.UpdatedAt = budget.CreatedAt
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category_id, limit_cents, month_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		budget.UserID,
		budget.CategoryID,
		budget.MonthlyLimit.Cents(),
		budget.Month.Key(),
		budget.CreatedAt.UTC(),
		budget.UpdatedAt.UTC(),
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("create budget for category %d in %s", budget.CategoryID, budget.Month))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get budget ID: %w", err)
	}
	budget.ID = id

	slog.Info("created budget", "id", id, "user", budget.UserID, "category", budget.CategoryID, "month", budget.Month.Key())
	return nil
}

// GetBudget returns the budget with the given id.
func (s queries) GetBudget(ctx context.Context, id int64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "budgetID"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	budget, err := scanBudget(row)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("get budget %d", id))
	}
	return budget, nil
}

// FindBudget returns the budget for (user, category, month), or common.ErrNotFound.
func (s queries) FindBudget(ctx context.Context, userID uuid.UUID, categoryID int64, month model.YearMonth) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = ? AND category_id = ? AND month_key = ?`,
		userID, categoryID, month.Key())
	budget, err := scanBudget(row)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("find budget for category %d in %s", categoryID, month))
	}
	return budget, nil
}

// ListBudgets returns a user's budgets for one month.
func (s queries) ListBudgets(ctx context.Context, userID uuid.UUID, month model.YearMonth) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.category_id, b.limit_cents, b.month_key, b.created_at, b.updated_at
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = ? AND b.month_key = ?
		ORDER BY c.name, b.id`,
		userID, month.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	return budgets, rows.Err()
}

// UpdateBudgetLimit changes only the monthly limit of a budget.
func (s queries) UpdateBudgetLimit(ctx context.Context, id int64, limit model.Money, updatedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "budgetID"); err != nil {
		return err
	}
	if !limit.IsPositive() {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidBudget)
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE budgets SET limit_cents = ?, updated_at = ? WHERE id = ?`,
		limit.Cents(), updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if err := requireAffected(result, "budget %d", id); err != nil {
		return err
	}

	slog.Info("updated budget", "id", id, "limit", limit.String())
	return nil
}

// DeleteBudget removes a budget.
func (s queries) DeleteBudget(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "budgetID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if err := requireAffected(result, "budget %d", id); err != nil {
		return err
	}

	slog.Info("deleted budget", "id", id)
	return nil
}

func scanBudget(row scanner) (*model.Budget, error) {
	var (
		budget   model.Budget
		cents    int64
		monthKey string
	)
	err := row.Scan(&budget.ID, &budget.UserID, &budget.CategoryID, &cents, &monthKey, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return nil, err
	}

	budget.Month, err = model.ParseMonthKey(monthKey)
	if err != nil {
		return nil, err
	}
	budget.MonthlyLimit = model.MoneyFromCents(cents)
	return &budget, nil
}
