package ledger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/category"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

// ImportRequest files statement entries under one category and payment method.
type ImportRequest struct {
	PaymentMethod model.PaymentMethod
	Entries       []model.StatementEntry
	CategoryID    int64
}

// ImportResult reports how many entries became expenses.
type ImportResult struct {
	Created []model.Expense
	Skipped int
}

// Import records statement entries as expenses in a single transaction:
// either every accepted entry is stored or none is. Entries dated in the
// future or with a non-positive amount are skipped. progress, if non-nil,
// is called once per entry.
func (l *Ledger) Import(ctx context.Context, userID uuid.UUID, req ImportRequest, progress func()) (*ImportResult, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}
	if !req.PaymentMethod.Valid() {
		return nil, common.InvalidInput("unknown payment method %q", req.PaymentMethod)
	}

	today := l.Today()
	now := l.clock.Now().UTC()
	result := &ImportResult{}

	err := service.WithTx(ctx, l.store, func(tx service.Transaction) error {
		cat, err := category.Resolve(ctx, tx, userID, req.CategoryID)
		if err != nil {
			return err
		}

		for _, entry := range req.Entries {
			if progress != nil {
				progress()
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			date := model.DateOf(entry.Date)
			if !entry.Amount.IsPositive() || !entry.Amount.Storable() || entry.Date.IsZero() || date.After(today) {
				slog.Debug("skipping statement entry", "fitid", entry.FITID, "date", model.FormatDate(entry.Date), "amount", entry.Amount.String())
				result.Skipped++
				continue
			}

			description := entry.Description
			if len([]rune(description)) > maxDescriptionLength {
				description = string([]rune(description)[:maxDescriptionLength])
			}

			expense := model.Expense{
				UserID:        userID,
				CategoryID:    cat.ID,
				Amount:        entry.Amount,
				Date:          date,
				Description:   cleanDescription(&description),
				PaymentMethod: req.PaymentMethod,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.CreateExpense(ctx, &expense); err != nil {
				return err
			}
			fillCategory(&expense, cat)
			result.Created = append(result.Created, expense)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("imported statement entries", "user", userID, "created", len(result.Created), "skipped", result.Skipped)
	return result, nil
}
