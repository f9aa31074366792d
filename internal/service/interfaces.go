// Package service defines the contracts shared by the domain services and the store.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/model"
)

// SortKey names a column expenses may be ordered by.
type SortKey string

// Supported sort keys.
const (
	SortByDate      SortKey = "date"
	SortByAmount    SortKey = "amount"
	SortByCreatedAt SortKey = "created_at"
	SortByID        SortKey = "id"
)

// SortDirection is ascending or descending.
type SortDirection string

// Sort directions.
const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ExpenseFilter selects one page of a user's expenses.
// Start and End are inclusive calendar dates; either may be nil.
type ExpenseFilter struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *int64
	SortKey    SortKey
	Direction  SortDirection
	Page       int
	PageSize   int
	UserID     uuid.UUID
}

// ExpensePage is one page of expenses plus totals for the whole result set.
type ExpensePage struct {
	Items      []model.Expense `json:"content"`
	Page       int             `json:"page"`
	PageSize   int             `json:"size"`
	TotalItems int64           `json:"totalElements"`
	TotalPages int             `json:"totalPages"`
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetVisibleCategories(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	GetSharedCategories(ctx context.Context) ([]model.Category, error)
	CountSharedCategories(ctx context.Context) (int, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, id int64) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, filter ExpenseFilter) (*ExpensePage, error)

	// Expense aggregates
	SumExpenses(ctx context.Context, userID uuid.UUID, r model.DateRange) (model.Money, error)
	SumExpensesForCategory(ctx context.Context, userID uuid.UUID, categoryID int64, r model.DateRange) (model.Money, error)
	CountExpenses(ctx context.Context, userID uuid.UUID, r model.DateRange) (int64, error)
	CategoryTotals(ctx context.Context, userID uuid.UUID, r model.DateRange) ([]model.CategoryTotal, error)
	DailyTotals(ctx context.Context, userID uuid.UUID, r model.DateRange) ([]model.DailyTotal, error)

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, id int64) (*model.Budget, error)
	FindBudget(ctx context.Context, userID uuid.UUID, categoryID int64, month model.YearMonth) (*model.Budget, error)
	ListBudgets(ctx context.Context, userID uuid.UUID, month model.YearMonth) ([]model.Budget, error)
	UpdateBudgetLimit(ctx context.Context, id int64, limit model.Money, updatedAt time.Time) error
	DeleteBudget(ctx context.Context, id int64) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// ReportWriter publishes a month report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report *model.MonthReport) error
}
