package model

import (
	"time"

	"github.com/google/uuid"
)

// Budget is a monthly spending limit for one user and category.
// At most one budget exists per (user, category, month).
type Budget struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MonthlyLimit Money
	Month        YearMonth
	ID           int64
	CategoryID   int64
	UserID       uuid.UUID
}

// BudgetView is a budget enriched with category details and actual spending.
type BudgetView struct {
	CategoryName   string    `json:"categoryName"`
	CategoryColor  string    `json:"categoryColor"`
	CategoryIcon   string    `json:"categoryIcon"`
	MonthKey       string    `json:"monthKey"`
	MonthlyLimit   Money     `json:"monthlyLimit"`
	TotalSpent     Money     `json:"totalSpent"`
	Remaining      Money     `json:"remainingAmount"`
	PercentageUsed float64   `json:"percentageUsed"`
	ID             int64     `json:"id"`
	CategoryID     int64     `json:"categoryId"`
	Year           int       `json:"year"`
	Month          int       `json:"month"`
	UserID         uuid.UUID `json:"-"`
}

// NewBudgetView computes usage figures for b given what was spent in its month.
func NewBudgetView(b Budget, category Category, spent Money) BudgetView {
	return BudgetView{
		ID:             b.ID,
		UserID:         b.UserID,
		CategoryID:     b.CategoryID,
		CategoryName:   category.Name,
		CategoryColor:  category.Color,
		CategoryIcon:   category.Icon,
		MonthKey:       b.Month.Key(),
		Year:           b.Month.Year,
		Month:          int(b.Month.Month),
		MonthlyLimit:   b.MonthlyLimit,
		TotalSpent:     spent,
		Remaining:      b.MonthlyLimit.Sub(spent),
		PercentageUsed: Percentage(spent, b.MonthlyLimit),
	}
}

// OverBudget reports whether spending exceeded the limit.
func (v BudgetView) OverBudget() bool {
	return v.Remaining.IsNegative()
}
