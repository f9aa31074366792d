// Package ledger records expenses and answers the aggregate queries the
// budget and dashboard packages are built on.
package ledger

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/category"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

// Pagination limits.
const (
	DefaultPageSize      = 10
	MaxPageSize          = 100
	maxDescriptionLength = 255
)

// ExpenseInput carries the user-editable fields of an expense.
type ExpenseInput struct {
	Date          time.Time
	Description   *string
	Amount        model.Money
	PaymentMethod model.PaymentMethod
	CategoryID    int64
}

// Query selects one page of the caller's expenses. Zero values mean
// "no filter", sort by date, descending.
type Query struct {
	From       *time.Time
	To         *time.Time
	CategoryID *int64
	SortKey    service.SortKey
	Direction  service.SortDirection
	Page       int
	PageSize   int
}

// Ledger stores expenses on behalf of their owners.
type Ledger struct {
	store service.Storage
	clock common.Clock
}

// New creates a ledger backed by store.
func New(store service.Storage, clock common.Clock) *Ledger {
	return &Ledger{store: store, clock: clock}
}

// Today returns the current calendar date according to the ledger's clock.
func (l *Ledger) Today() time.Time {
	return model.DateOf(l.clock.Now())
}

// Create records a new expense for userID in a category the user may use.
func (l *Ledger) Create(ctx context.Context, userID uuid.UUID, in ExpenseInput) (*model.Expense, error) {
	if err := l.validateInput(userID, in); err != nil {
		return nil, err
	}

	now := l.clock.Now().UTC()
	expense := &model.Expense{
		UserID:        userID,
		CategoryID:    in.CategoryID,
		Amount:        in.Amount,
		Date:          model.DateOf(in.Date),
		Description:   cleanDescription(in.Description),
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		cat, err := category.Resolve(ctx, tx, userID, in.CategoryID)
		if err != nil {
			return err
		}
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		fillCategory(expense, cat)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// Get returns one of the caller's expenses.
func (l *Ledger) Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Expense, error) {
	var expense *model.Expense
	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		var err error
		expense, err = loadOwned(ctx, tx, userID, id)
		return err
	})
	return expense, err
}

// Update replaces the editable fields of one of the caller's expenses.
// The (possibly new) category is checked again.
func (l *Ledger) Update(ctx context.Context, userID uuid.UUID, id int64, in ExpenseInput) (*model.Expense, error) {
	if err := l.validateInput(userID, in); err != nil {
		return nil, err
	}

	var expense *model.Expense
	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		existing, err := loadOwned(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		cat, err := category.Resolve(ctx, tx, userID, in.CategoryID)
		if err != nil {
			return err
		}

		existing.CategoryID = in.CategoryID
		existing.Amount = in.Amount
		existing.Date = model.DateOf(in.Date)
		existing.Description = cleanDescription(in.Description)
		existing.PaymentMethod = in.PaymentMethod
		existing.UpdatedAt = l.clock.Now().UTC()

		if err := tx.UpdateExpense(ctx, existing); err != nil {
			return err
		}
		fillCategory(existing, cat)
		expense = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// Delete removes one of the caller's expenses.
func (l *Ledger) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	return service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		if _, err := loadOwned(ctx, tx, userID, id); err != nil {
			return err
		}
		return tx.DeleteExpense(ctx, id)
	})
}

// List returns one page of the caller's expenses.
func (l *Ledger) List(ctx context.Context, userID uuid.UUID, q Query) (*service.ExpensePage, error) {
	filter, err := buildFilter(userID, q)
	if err != nil {
		return nil, err
	}

	var page *service.ExpensePage
	err = service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		var err error
		page, err = tx.ListExpenses(ctx, filter)
		return err
	})
	return page, err
}

// ValidateRange rejects ranges with a missing bound or Start after End.
func ValidateRange(r model.DateRange) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return common.InvalidInput("date range needs both a start and an end")
	}
	if model.DateOf(r.Start).After(model.DateOf(r.End)) {
		return common.InvalidInput("start date %s is after end date %s", model.FormatDate(r.Start), model.FormatDate(r.End))
	}
	return nil
}

func (l *Ledger) validateInput(userID uuid.UUID, in ExpenseInput) error {
	if userID == uuid.Nil {
		return common.InvalidInput("user id is required")
	}
	if !in.Amount.IsPositive() {
		return common.InvalidInput("amount must be greater than zero")
	}
	if !in.Amount.Storable() {
		return common.InvalidInput("amount %s is too large", in.Amount)
	}
	if in.Date.IsZero() {
		return common.InvalidInput("date is required")
	}
	if model.DateOf(in.Date).After(l.Today()) {
		return common.InvalidInput("date %s is in the future", model.FormatDate(in.Date))
	}
	if !in.PaymentMethod.Valid() {
		return common.InvalidInput("unknown payment method %q", in.PaymentMethod)
	}
	if in.CategoryID <= 0 {
		return common.InvalidInput("category id is required")
	}
	if in.Description != nil && utf8.RuneCountInString(strings.TrimSpace(*in.Description)) > maxDescriptionLength {
		return common.InvalidInput("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
}

func buildFilter(userID uuid.UUID, q Query) (service.ExpenseFilter, error) {
	if userID == uuid.Nil {
		return service.ExpenseFilter{}, common.InvalidInput("user id is required")
	}

	sortKey := q.SortKey
	if sortKey == "" {
		sortKey = service.SortByDate
	}
	key, err := ParseSortKey(string(sortKey))
	if err != nil {
		return service.ExpenseFilter{}, err
	}

	direction := q.Direction
	if direction == "" {
		direction = service.Descending
	}
	direction, err = ParseDirection(string(direction))
	if err != nil {
		return service.ExpenseFilter{}, err
	}

	pageSize := q.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if q.Page < 0 {
		return service.ExpenseFilter{}, common.InvalidInput("page must not be negative")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return service.ExpenseFilter{}, common.InvalidInput("page size must be between 1 and %d", MaxPageSize)
	}

	if q.From != nil && q.To != nil && model.DateOf(*q.From).After(model.DateOf(*q.To)) {
		return service.ExpenseFilter{}, common.InvalidInput("start date is after end date")
	}

	return service.ExpenseFilter{
		UserID:     userID,
		CategoryID: q.CategoryID,
		Start:      q.From,
		End:        q.To,
		SortKey:    key,
		Direction:  direction,
		Page:       q.Page,
		PageSize:   pageSize,
	}, nil
}

// ParseSortKey accepts the supported sort keys, in snake or camel case.
func ParseSortKey(s string) (service.SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return service.SortByDate, nil
	case "amount":
		return service.SortByAmount, nil
	case "created_at", "createdat":
		return service.SortByCreatedAt, nil
	case "id":
		return service.SortByID, nil
	default:
		return "", common.InvalidInput("unsupported sort key %q", s)
	}
}

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (service.SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return service.Ascending, nil
	case "desc":
		return service.Descending, nil
	default:
		return "", common.InvalidInput("sort direction must be asc or desc, got %q", s)
	}
}

func loadOwned(ctx context.Context, store service.Storage, userID uuid.UUID, id int64) (*model.Expense, error) {
	if id <= 0 {
		return nil, common.NotFound("expense %d", id)
	}
	expense, err := store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.UserID != userID {
		return nil, common.AccessDenied("expense %d belongs to another user", id)
	}
	return expense, nil
}

func cleanDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func fillCategory(expense *model.Expense, cat *model.Category) {
	expense.CategoryName = cat.Name
	expense.CategoryColor = cat.Color
	expense.CategoryIcon = cat.Icon
}
