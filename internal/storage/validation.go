// Package storage provides the SQLite persistence layer for users, categories,
// expenses and budgets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidID        = errors.New("id must be positive")
	ErrNilUserID        = errors.New("user id cannot be nil")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidExpense   = errors.New("invalid expense")
	ErrInvalidBudget    = errors.New("invalid budget")
	ErrInvalidCategory  = errors.New("invalid category")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

func validateUserID(id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrNilUserID
	}
	return nil
}

func validateDateRange(r model.DateRange) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: missing bound", ErrInvalidDateRange)
	}
	if r.Start.After(r.End) {
		return ErrInvalidDateRange
	}
	return nil
}

func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if err := validateUserID(user.ID); err != nil {
		return err
	}
	if err := validateString(user.Name, "name"); err != nil {
		return err
	}
	return validateString(user.Email, "email")
}

func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if category.Color == "" || category.Icon == "" {
		return fmt.Errorf("%w: missing color or icon", ErrInvalidCategory)
	}
	return nil
}

func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if err := validateUserID(expense.UserID); err != nil {
		return err
	}
	if expense.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidExpense)
	}
	if !expense.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if !expense.Amount.Storable() {
		return fmt.Errorf("%w: %w", ErrInvalidExpense, model.ErrAmountRange)
	}
	if expense.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidExpense)
	}
	if !expense.PaymentMethod.Valid() {
		return fmt.Errorf("%w: payment method %q", ErrInvalidExpense, expense.PaymentMethod)
	}
	return nil
}

func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := validateUserID(budget.UserID); err != nil {
		return err
	}
	if budget.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidBudget)
	}
	if !budget.MonthlyLimit.IsPositive() {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidBudget)
	}
	if !budget.MonthlyLimit.Storable() {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, model.ErrAmountRange)
	}
	if _, err := model.NewYearMonth(budget.Month.Year, int(budget.Month.Month)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, err)
	}
	return nil
}
