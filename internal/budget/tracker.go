// Package budget tracks monthly per-category spending limits and how much of
// each limit has been used.
package budget

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/category"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

// Tracker manages budgets. At most one budget exists per user, category and month.
type Tracker struct {
	store service.Storage
	clock common.Clock
}

// NewTracker creates a tracker backed by store.
func NewTracker(store service.Storage, clock common.Clock) *Tracker {
	return &Tracker{store: store, clock: clock}
}

// Create sets a limit for one category in one month.
func (t *Tracker) Create(ctx context.Context, userID uuid.UUID, categoryID int64, limit model.Money, year, month int) (*model.BudgetView, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	ym, err := parseMonth(year, month)
	if err != nil {
		return nil, err
	}

	var view model.BudgetView
	err = service.WithTx(ctx, t.store, func(tx service.Transaction) error {
		cat, err := category.Resolve(ctx, tx, userID, categoryID)
		if err != nil {
			return err
		}

		existing, err := tx.FindBudget(ctx, userID, categoryID, ym)
		switch {
		case err == nil:
			return common.Conflict("budget %d already covers %s in %s", existing.ID, cat.Name, ym)
		case !errors.Is(err, common.ErrNotFound):
			return err
		}

		now := t.clock.Now().UTC()
		b := model.Budget{
			UserID:       userID,
			CategoryID:   categoryID,
			MonthlyLimit: limit,
			Month:        ym,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		// The unique index still rejects a concurrent duplicate with ErrConflict.
		if err := tx.CreateBudget(ctx, &b); err != nil {
			return err
		}

		view, err = enrich(ctx, tx, b, cat)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListForMonth returns the caller's budgets for a month, ordered by category name.
func (t *Tracker) ListForMonth(ctx context.Context, userID uuid.UUID, year, month int) ([]model.BudgetView, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}
	ym, err := parseMonth(year, month)
	if err != nil {
		return nil, err
	}

	views := []model.BudgetView{}
	err = service.WithTx(ctx, t.store, func(tx service.Transaction) error {
		budgets, err := tx.ListBudgets(ctx, userID, ym)
		if err != nil {
			return err
		}
		for _, b := range budgets {
			cat, err := tx.GetCategoryByID(ctx, b.CategoryID)
			if err != nil {
				return err
			}
			view, err := enrich(ctx, tx, b, cat)
			if err != nil {
				return err
			}
			views = append(views, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Update changes the limit of one of the caller's budgets. Nothing else changes.
func (t *Tracker) Update(ctx context.Context, userID uuid.UUID, budgetID int64, limit model.Money) (*model.BudgetView, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	var view model.BudgetView
	err := service.WithTx(ctx, t.store, func(tx service.Transaction) error {
		b, err := loadOwned(ctx, tx, userID, budgetID)
		if err != nil {
			return err
		}

		now := t.clock.Now().UTC()
		if err := tx.UpdateBudgetLimit(ctx, b.ID, limit, now); err != nil {
			return err
		}
		b.MonthlyLimit = limit
		b.UpdatedAt = now

		cat, err := tx.GetCategoryByID(ctx, b.CategoryID)
		if err != nil {
			return err
		}
		view, err = enrich(ctx, tx, *b, cat)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete removes one of the caller's budgets.
func (t *Tracker) Delete(ctx context.Context, userID uuid.UUID, budgetID int64) error {
	return service.WithTx(ctx, t.store, func(tx service.Transaction) error {
		if _, err := loadOwned(ctx, tx, userID, budgetID); err != nil {
			return err
		}
		return tx.DeleteBudget(ctx, budgetID)
	})
}

func enrich(ctx context.Context, tx service.Transaction, b model.Budget, cat *model.Category) (model.BudgetView, error) {
	spent, err := ledger.SumForCategory(ctx, tx, b.UserID, b.CategoryID, b.Month.Range())
	if err != nil {
		return model.BudgetView{}, err
	}
	return model.NewBudgetView(b, *cat, spent), nil
}

func loadOwned(ctx context.Context, tx service.Transaction, userID uuid.UUID, budgetID int64) (*model.Budget, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}
	if budgetID <= 0 {
		return nil, common.NotFound("budget %d", budgetID)
	}
	b, err := tx.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, common.AccessDenied("budget %d belongs to another user", budgetID)
	}
	return b, nil
}

func validateLimit(limit model.Money) error {
	if !limit.IsPositive() {
		return common.InvalidInput("monthly limit must be greater than zero")
	}
	if !limit.Storable() {
		return common.InvalidInput("monthly limit %s is too large", limit)
	}
	return nil
}

func parseMonth(year, month int) (model.YearMonth, error) {
	ym, err := model.NewYearMonth(year, month)
	if err != nil {
		return model.YearMonth{}, common.InvalidInput("%v", err)
	}
	return ym, nil
}
