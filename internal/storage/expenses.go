package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

const expenseSelect = `
	SELECT e.id, e.user_id, e.category_id, e.amount_cents, e.expense_date,
	       e.description, e.payment_method, e.created_at, e.updated_at,
	       c.name, c.color, c.icon
	FROM expenses e
	JOIN categories c ON c.id = e.category_id`

// sortColumns maps sort keys onto SQL columns. Only these are ever interpolated.
var sortColumns = map[service.SortKey]string{
	service.SortByDate:      "e.expense_date",
	service.SortByAmount:    "e.amount_cents",
	service.SortByCreatedAt: "e.created_at",
	service.SortByID:        "e.id",
}

// CreateExpense inserts an expense and sets its ID.
func (s queries) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	if expense.UpdatedAt.IsZero() {
		expense.UpdatedAt = expense.CreatedAt
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO expenses (user_id, category_id, amount_cents, expense_date, description,
		                      payment_method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.UserID,
		expense.CategoryID,
		expense.Amount.Cents(),
		model.FormatDate(expense.Date),
		nullableString(expense.Description),
		string(expense.PaymentMethod),
		expense.CreatedAt.UTC(),
		expense.UpdatedAt.UTC(),
	)
	if err != nil {
		return translateError(err, "create expense")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense ID: %w", err)
	}
	expense.ID = id

	slog.Info("created expense", "id", id, "user", expense.UserID, "amount", expense.Amount.String())
	return nil
}

// GetExpense returns the expense with the given id, joined with its category.
func (s queries) GetExpense(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "expenseID"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, expenseSelect+` WHERE e.id = ?`, id)
	expense, err := scanExpense(row)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("get expense %d", id))
	}
	return expense, nil
}

// UpdateExpense overwrites the mutable fields of an existing expense.
func (s queries) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}
	if err := validateID(expense.ID, "expenseID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE expenses
		SET category_id = ?, amount_cents = ?, expense_date = ?, description = ?,
		    payment_method = ?, updated_at = ?
		WHERE id = ?`,
		expense.CategoryID,
		expense.Amount.Cents(),
		model.FormatDate(expense.Date),
		nullableString(expense.Description),
		string(expense.PaymentMethod),
		expense.UpdatedAt.UTC(),
		expense.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("update expense %d", expense.ID))
	}
	if err := requireAffected(result, "expense %d", expense.ID); err != nil {
		return err
	}

	slog.Info("updated expense", "id", expense.ID)
	return nil
}

// DeleteExpense removes an expense.
func (s queries) DeleteExpense(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "expenseID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if err := requireAffected(result, "expense %d", id); err != nil {
		return err
	}

	slog.Info("deleted expense", "id", id)
	return nil
}

// ListExpenses returns one page of a user's expenses.
func (s queries) ListExpenses(ctx context.Context, filter service.ExpenseFilter) (*service.ExpensePage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(filter.UserID); err != nil {
		return nil, err
	}

	column, ok := sortColumns[filter.SortKey]
	if !ok {
		return nil, common.InvalidInput("unsupported sort key %q", filter.SortKey)
	}
	direction := "DESC"
	if filter.Direction == service.Ascending {
		direction = "ASC"
	}
	if filter.Page < 0 || filter.PageSize <= 0 {
		return nil, common.InvalidInput("page %d size %d", filter.Page, filter.PageSize)
	}

	where := []string{"e.user_id = ?"}
	args := []any{filter.UserID}
	if filter.CategoryID != nil {
		where = append(where, "e.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Start != nil {
		where = append(where, "e.expense_date >= ?")
		args = append(args, model.FormatDate(*filter.Start))
	}
	if filter.End != nil {
		where = append(where, "e.expense_date <= ?")
		args = append(args, model.FormatDate(*filter.End))
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM expenses e` + whereClause
	if err := s.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY %s %s, e.id %s LIMIT ? OFFSET ?",
		expenseSelect, whereClause, column, direction, direction)
	pageArgs := append(append([]any{}, args...), filter.PageSize, filter.Page*filter.PageSize)

	rows, err := s.q.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]model.Expense, 0, filter.PageSize)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		items = append(items, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))

	return &service.ExpensePage{
		Items:      items,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func scanExpense(row scanner) (*model.Expense, error) {
	var (
		expense     model.Expense
		cents       int64
		date        string
		description sql.NullString
		method      string
	)
	err := row.Scan(
		&expense.ID, &expense.UserID, &expense.CategoryID, &cents, &date,
		&description, &method, &expense.CreatedAt, &expense.UpdatedAt,
		&expense.CategoryName, &expense.CategoryColor, &expense.CategoryIcon,
	)
	if err != nil {
		return nil, err
	}

	expense.Date, err = model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	expense.Amount = model.MoneyFromCents(cents)
	expense.PaymentMethod = model.PaymentMethod(method)
	if description.Valid {
		expense.Description = &description.String
	}
	return &expense, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func requireAffected(result sql.Result, format string, args ...any) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFound(format, args...)
	}
	return nil
}
