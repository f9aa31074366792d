package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spent/internal/model"
)

func tooLarge() model.Money {
	return model.MoneyFromDecimal(decimal.RequireFromString("184467440737095517.16"))
}

func TestValidateContext(t *testing.T) {
	assert.NoError(t, validateContext(context.Background()))
	//nolint:staticcheck // nil context is what is being rejected
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
}

func TestValidateDateRange(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		r       model.DateRange
		wantErr bool
	}{
		{name: "single day", r: model.DateRange{Start: day(1), End: day(1)}},
		{name: "month", r: model.DateRange{Start: day(1), End: day(31)}},
		{name: "reversed", r: model.DateRange{Start: day(2), End: day(1)}, wantErr: true},
		{name: "missing start", r: model.DateRange{End: day(1)}, wantErr: true},
		{name: "missing end", r: model.DateRange{Start: day(1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDateRange(tt.r)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateUser(t *testing.T) {
	valid := func() *model.User {
		return &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	}

	tests := []struct {
		mutate func(u *model.User)
		want   error
		name   string
	}{
		{name: "valid", mutate: func(*model.User) {}},
		{name: "nil id", mutate: func(u *model.User) { u.ID = uuid.Nil }, want: ErrNilUserID},
		{name: "blank name", mutate: func(u *model.User) { u.Name = "  " }, want: ErrEmptyString},
		{name: "blank email", mutate: func(u *model.User) { u.Email = "" }, want: ErrEmptyString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid()
			tt.mutate(u)
			err := validateUser(u)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, validateUser(nil), ErrNilParameter)
}

func TestValidateExpense(t *testing.T) {
	valid := func() *model.Expense {
		return &model.Expense{
			UserID:        uuid.New(),
			CategoryID:    1,
			Amount:        model.MustParseMoney("9.99"),
			Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			PaymentMethod: model.PaymentCash,
		}
	}

	tests := []struct {
		mutate func(e *model.Expense)
		want   error
		name   string
	}{
		{name: "valid", mutate: func(*model.Expense) {}},
		{name: "nil user", mutate: func(e *model.Expense) { e.UserID = uuid.Nil }, want: ErrNilUserID},
		{name: "no category", mutate: func(e *model.Expense) { e.CategoryID = 0 }, want: ErrInvalidExpense},
		{name: "zero amount", mutate: func(e *model.Expense) { e.Amount = model.Zero() }, want: ErrInvalidExpense},
		{name: "negative amount", mutate: func(e *model.Expense) { e.Amount = model.MustParseMoney("-1.00") }, want: ErrInvalidExpense},
		{name: "amount too large", mutate: func(e *model.Expense) { e.Amount = tooLarge() }, want: model.ErrAmountRange},
		{name: "no date", mutate: func(e *model.Expense) { e.Date = time.Time{} }, want: ErrInvalidExpense},
		{name: "bad method", mutate: func(e *model.Expense) { e.PaymentMethod = "BARTER" }, want: ErrInvalidExpense},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			err := validateExpense(e)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateBudget(t *testing.T) {
	valid := func() *model.Budget {
		return &model.Budget{
			UserID:       uuid.New(),
			CategoryID:   1,
			MonthlyLimit: model.MustParseMoney("500"),
			Month:        model.YearMonth{Year: 2025, Month: time.March},
		}
	}

	tests := []struct {
		mutate func(b *model.Budget)
		want   error
		name   string
	}{
		{name: "valid", mutate: func(*model.Budget) {}},
		{name: "zero limit", mutate: func(b *model.Budget) { b.MonthlyLimit = model.Zero() }, want: ErrInvalidBudget},
		{name: "limit too large", mutate: func(b *model.Budget) { b.MonthlyLimit = tooLarge() }, want: model.ErrAmountRange},
		{name: "no category", mutate: func(b *model.Budget) { b.CategoryID = -1 }, want: ErrInvalidBudget},
		{name: "month out of range", mutate: func(b *model.Budget) { b.Month.Month = 13 }, want: model.ErrInvalidMonth},
		{name: "nil user", mutate: func(b *model.Budget) { b.UserID = uuid.Nil }, want: ErrNilUserID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(b)
			err := validateBudget(b)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
