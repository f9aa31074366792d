package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/testutil"
)

type ledgerFixture struct {
	db      *testutil.TestDB
	ledger  *Ledger
	alice   model.User
	bob     model.User
	food    model.Category
	private model.Category
}

func newFixture(t *testing.T) ledgerFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	alice := db.MustCreateUser("Alice")
	bob := db.MustCreateUser("Bob")
	cats := db.MustSeedDefaults()

	return ledgerFixture{
		db:      db,
		ledger:  New(db.Storage, db.Clock),
		alice:   alice,
		bob:     bob,
		food:    cats.MustFind(t, "Food"),
		private: db.MustCreatePrivateCategory(alice.ID, "Hobbies"),
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func strPtr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.ledger.Create(ctx, f.alice.ID, ExpenseInput{
		Amount:        model.MustParseMoney("42.10"),
		CategoryID:    f.food.ID,
		Date:          date(t, "2025-03-14"),
		Description:   strPtr("  groceries "),
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Food", created.CategoryName)
	assert.Equal(t, "groceries", created.DescriptionOrEmpty())
	assert.Equal(t, testutil.Now, created.CreatedAt)

	got, err := f.ledger.Get(ctx, f.alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, created.Amount.Equal(got.Amount))
	assert.Equal(t, model.FormatDate(created.Date), model.FormatDate(got.Date))
	assert.Equal(t, created.CategoryID, got.CategoryID)
	assert.Equal(t, created.PaymentMethod, got.PaymentMethod)
	assert.Equal(t, f.alice.ID, got.UserID)

	t.Run("largest storable amount round trips", func(t *testing.T) {
		big, err := f.ledger.Create(ctx, f.alice.ID, ExpenseInput{
			Amount:        model.MustParseMoney("92233720368547758.07"),
			CategoryID:    f.food.ID,
			Date:          date(t, "2025-03-14"),
			PaymentMethod: model.PaymentCash,
		})
		require.NoError(t, err)

		got, err := f.ledger.Get(ctx, f.alice.ID, big.ID)
		require.NoError(t, err)
		assert.Equal(t, "92233720368547758.07", got.Amount.String())
	})
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	valid := func() ExpenseInput {
		return ExpenseInput{
			Amount:        model.MustParseMoney("10"),
			CategoryID:    f.food.ID,
			Date:          date(t, "2025-03-15"),
			PaymentMethod: model.PaymentCard,
		}
	}

	tests := []struct {
		name    string
		mutate  func(in *ExpenseInput)
		wantErr error
	}{
		{"zero amount", func(in *ExpenseInput) { in.Amount = model.Zero() }, common.ErrInvalidInput},
		{"negative amount", func(in *ExpenseInput) { in.Amount = model.MustParseMoney("-1") }, common.ErrInvalidInput},
		{"amount beyond storable cents", func(in *ExpenseInput) {
			in.Amount = model.MoneyFromDecimal(decimal.RequireFromString("184467440737095517.16"))
		}, common.ErrInvalidInput},
		{"tomorrow", func(in *ExpenseInput) { in.Date = date(t, "2025-03-16") }, common.ErrInvalidInput},
		{"missing date", func(in *ExpenseInput) { in.Date = time.Time{} }, common.ErrInvalidInput},
		{"unknown payment method", func(in *ExpenseInput) { in.PaymentMethod = "BARTER" }, common.ErrInvalidInput},
		{"missing category", func(in *ExpenseInput) { in.CategoryID = 0 }, common.ErrInvalidInput},
		{"unknown category", func(in *ExpenseInput) { in.CategoryID = 9999 }, common.ErrNotFound},
		{"long description", func(in *ExpenseInput) {
			long := make([]rune, maxDescriptionLength+1)
			for i := range long {
				long[i] = 'x'
			}
			in.Description = strPtr(string(long))
		}, common.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			_, err := f.ledger.Create(ctx, f.alice.ID, in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("today is allowed", func(t *testing.T) {
		_, err := f.ledger.Create(ctx, f.alice.ID, valid())
		require.NoError(t, err)
	})
}

func TestOwnershipChecks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := ExpenseInput{
		Amount:        model.MustParseMoney("5"),
		CategoryID:    f.private.ID,
		Date:          date(t, "2025-03-01"),
		PaymentMethod: model.PaymentCard,
	}

	t.Run("private category of another user", func(t *testing.T) {
		_, err := f.ledger.Create(ctx, f.bob.ID, in)
		require.ErrorIs(t, err, common.ErrAccessDenied)
	})

	expense, err := f.ledger.Create(ctx, f.alice.ID, in)
	require.NoError(t, err)

	t.Run("get by another user", func(t *testing.T) {
		_, err := f.ledger.Get(ctx, f.bob.ID, expense.ID)
		require.ErrorIs(t, err, common.ErrAccessDenied)
	})

	t.Run("update by another user", func(t *testing.T) {
		bobIn := in
		bobIn.CategoryID = f.food.ID
		_, err := f.ledger.Update(ctx, f.bob.ID, expense.ID, bobIn)
		require.ErrorIs(t, err, common.ErrAccessDenied)
	})

	t.Run("delete by another user", func(t *testing.T) {
		require.ErrorIs(t, f.ledger.Delete(ctx, f.bob.ID, expense.ID), common.ErrAccessDenied)
		_, err := f.ledger.Get(ctx, f.alice.ID, expense.ID)
		require.NoError(t, err)
	})

	t.Run("missing expense", func(t *testing.T) {
		_, err := f.ledger.Get(ctx, f.alice.ID, 9999)
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	expense, err := f.ledger.Create(ctx, f.alice.ID, ExpenseInput{
		Amount:        model.MustParseMoney("5"),
		CategoryID:    f.food.ID,
		Date:          date(t, "2025-03-01"),
		Description:   strPtr("coffee"),
		PaymentMethod: model.PaymentCard,
	})
	require.NoError(t, err)

	later := New(f.db.Storage, common.FixedClock{T: testutil.Now.Add(time.Hour)})
	updated, err := later.Update(ctx, f.alice.ID, expense.ID, ExpenseInput{
		Amount:        model.MustParseMoney("7.25"),
		CategoryID:    f.private.ID,
		Date:          date(t, "2025-03-02"),
		PaymentMethod: model.PaymentUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, "7.25", updated.Amount.String())
	assert.Equal(t, "Hobbies", updated.CategoryName)
	assert.Nil(t, updated.Description)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	// Moving to a category the user cannot use fails and leaves the record alone
	bobsCategory := f.db.MustCreatePrivateCategory(f.bob.ID, "Bob only")
	_, err = later.Update(ctx, f.alice.ID, expense.ID, ExpenseInput{
		Amount:        model.MustParseMoney("9"),
		CategoryID:    bobsCategory.ID,
		Date:          date(t, "2025-03-02"),
		PaymentMethod: model.PaymentUPI,
	})
	require.ErrorIs(t, err, common.ErrAccessDenied)

	got, err := f.ledger.Get(ctx, f.alice.ID, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.25", got.Amount.String())

	_, err = later.Update(ctx, f.alice.ID, 9999, ExpenseInput{
		Amount:        model.MustParseMoney("9"),
		CategoryID:    f.food.ID,
		Date:          date(t, "2025-03-02"),
		PaymentMethod: model.PaymentUPI,
	})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	e := f.db.MustAddExpense(f.alice.ID, f.food.ID, "3.00", "2025-03-10")
	require.NoError(t, f.ledger.Delete(ctx, f.alice.ID, e.ID))
	require.ErrorIs(t, f.ledger.Delete(ctx, f.alice.ID, e.ID), common.ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	e1 := f.db.MustAddExpense(f.alice.ID, f.food.ID, "10.00", "2025-03-01")
	e2 := f.db.MustAddExpense(f.alice.ID, f.food.ID, "20.00", "2025-03-05")
	f.db.MustAddExpense(f.alice.ID, f.private.ID, "30.00", "2025-03-03")
	f.db.MustAddExpense(f.bob.ID, f.food.ID, "40.00", "2025-03-04")

	t.Run("category filter defaults to date desc", func(t *testing.T) {
		page, err := f.ledger.List(ctx, f.alice.ID, Query{CategoryID: &f.food.ID})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, e2.ID, page.Items[0].ID)
		assert.Equal(t, e1.ID, page.Items[1].ID)
		assert.Equal(t, DefaultPageSize, page.PageSize)
		for _, e := range page.Items {
			assert.Equal(t, f.alice.ID, e.UserID)
		}
	})

	t.Run("date range", func(t *testing.T) {
		from := date(t, "2025-03-02")
		to := date(t, "2025-03-04")
		page, err := f.ledger.List(ctx, f.alice.ID, Query{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "30.00", page.Items[0].Amount.String())
	})

	t.Run("camel case sort key", func(t *testing.T) {
		page, err := f.ledger.List(ctx, f.alice.ID, Query{SortKey: "createdAt", Direction: "ASC"})
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
	})

	tests := []struct {
		name string
		q    Query
	}{
		{"unknown sort key", Query{SortKey: "vendor"}},
		{"bad direction", Query{Direction: "sideways"}},
		{"negative page", Query{Page: -1}},
		{"page size too large", Query{PageSize: MaxPageSize + 1}},
		{"negative page size", Query{PageSize: -5}},
		{"inverted range", Query{From: ptrTime(date(t, "2025-03-05")), To: ptrTime(date(t, "2025-03-01"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.List(ctx, f.alice.ID, tt.q)
			require.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestAggregates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.db.MustAddExpense(f.alice.ID, f.food.ID, "10.00", "2025-03-01")
	f.db.MustAddExpense(f.alice.ID, f.private.ID, "15.50", "2025-03-01")
	f.db.MustAddExpense(f.alice.ID, f.food.ID, "4.50", "2025-03-09")
	march := model.YearMonth{Year: 2025, Month: time.March}.Range()

	total, err := f.ledger.SumInRange(ctx, f.alice.ID, march)
	require.NoError(t, err)
	assert.Equal(t, "30.00", total.String())

	foodTotal, err := f.ledger.SumInRangeForCategory(ctx, f.alice.ID, f.food.ID, march)
	require.NoError(t, err)
	assert.Equal(t, "14.50", foodTotal.String())

	count, err := f.ledger.CountInRange(ctx, f.alice.ID, march)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	byCategory, err := f.ledger.CategoryTotals(ctx, f.alice.ID, march)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	assert.Equal(t, "Hobbies", byCategory[0].Name)

	daily, err := f.ledger.DailyTotals(ctx, f.alice.ID, march)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "25.50", daily[0].Amount.String())

	bobTotal, err := f.ledger.SumInRange(ctx, f.bob.ID, march)
	require.NoError(t, err)
	assert.True(t, bobTotal.IsZero())

	_, err = f.ledger.SumInRange(ctx, f.alice.ID, model.DateRange{Start: march.End, End: march.Start})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = f.ledger.SumInRange(ctx, uuid.Nil, march)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestAggregatesShareCallerTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.db.MustAddExpense(f.alice.ID, f.food.ID, "10.00", "2025-03-01")
	march := model.YearMonth{Year: 2025, Month: time.March}.Range()

	err := service.WithTx(ctx, f.db.Storage, func(tx service.Transaction) error {
		pending := model.Expense{
			UserID:        f.alice.ID,
			CategoryID:    f.food.ID,
			Amount:        model.MustParseMoney("2.25"),
			Date:          date(t, "2025-03-02"),
			PaymentMethod: model.PaymentCash,
			CreatedAt:     testutil.Now,
			UpdatedAt:     testutil.Now,
		}
		require.NoError(t, tx.CreateExpense(ctx, &pending))

		total, err := Sum(ctx, tx, f.alice.ID, march)
		require.NoError(t, err)
		assert.Equal(t, "12.25", total.String())

		food, err := SumForCategory(ctx, tx, f.alice.ID, f.food.ID, march)
		require.NoError(t, err)
		assert.Equal(t, "12.25", food.String())

		count, err := Count(ctx, tx, f.alice.ID, march)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		byCategory, err := TotalsByCategory(ctx, tx, f.alice.ID, march)
		require.NoError(t, err)
		require.Len(t, byCategory, 1)

		byDay, err := TotalsByDay(ctx, tx, f.alice.ID, march)
		require.NoError(t, err)
		assert.Len(t, byDay, 2)

		return errors.New("roll back")
	})
	require.Error(t, err)

	total, err := f.ledger.SumInRange(ctx, f.alice.ID, march)
	require.NoError(t, err)
	assert.Equal(t, "10.00", total.String())

	reversed := model.DateRange{Start: march.End, End: march.Start}
	_, err = Sum(ctx, f.db.Storage, f.alice.ID, reversed)
	require.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = Count(ctx, f.db.Storage, uuid.Nil, march)
	require.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = TotalsByDay(ctx, f.db.Storage, f.alice.ID, model.DateRange{Start: march.Start})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	entries := []model.StatementEntry{
		{FITID: "1", Date: date(t, "2025-03-10"), Amount: model.MustParseMoney("25.50"), Description: "STARBUCKS"},
		{FITID: "2", Date: date(t, "2025-03-20"), Amount: model.MustParseMoney("10.00"), Description: "future"},
		{FITID: "3", Date: date(t, "2025-03-11"), Amount: model.Zero(), Description: "zero"},
		{FITID: "4", Date: date(t, "2025-03-12"), Amount: model.MustParseMoney("4.00"), Description: ""},
	}

	calls := 0
	result, err := f.ledger.Import(ctx, f.alice.ID, ImportRequest{
		CategoryID:    f.food.ID,
		PaymentMethod: model.PaymentCard,
		Entries:       entries,
	}, func() { calls++ })
	require.NoError(t, err)
	assert.Len(t, result.Created, 2)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, len(entries), calls)
	assert.Nil(t, result.Created[1].Description)

	page, err := f.ledger.List(ctx, f.alice.ID, Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)

	t.Run("forbidden category stores nothing", func(t *testing.T) {
		_, err := f.ledger.Import(ctx, f.bob.ID, ImportRequest{
			CategoryID:    f.private.ID,
			PaymentMethod: model.PaymentCard,
			Entries:       entries,
		}, nil)
		require.ErrorIs(t, err, common.ErrAccessDenied)

		page, err := f.ledger.List(ctx, f.bob.ID, Query{SortKey: service.SortByID})
		require.NoError(t, err)
		assert.Zero(t, page.TotalItems)
	})
}
