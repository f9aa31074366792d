package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/testutil"
	"github.com/Veraticus/spent/internal/tui/themes"
)

type fakeFetcher struct {
	err      error
	expenses []model.Expense
	queries  []ledger.Query
}

func (f *fakeFetcher) FetchPage(_ context.Context, q ledger.Query) (*service.ExpensePage, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	total := len(f.expenses)
	start := min(q.Page*q.PageSize, total)
	end := min(start+q.PageSize, total)
	return &service.ExpensePage{
		Items:      f.expenses[start:end],
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalItems: int64(total),
		TotalPages: (total + q.PageSize - 1) / q.PageSize,
	}, nil
}

func sampleExpenses(n int) []model.Expense {
	out := make([]model.Expense, 0, n)
	for i := range n {
		desc := "Coffee"
		out = append(out, model.Expense{
			ID:            int64(i + 1),
			Date:          time.Date(2025, time.March, i+1, 0, 0, 0, 0, time.UTC),
			Amount:        model.MoneyFromCents(int64(100 * (i + 1))),
			Description:   &desc,
			PaymentMethod: model.PaymentCard,
			CategoryName:  "Food",
		})
	}
	return out
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// step applies msg and, when the model answers with a command, runs it and
// applies the result as well.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func settle(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, cmd := step(t, m, msg)
	if cmd == nil {
		return m
	}
	m, _ = step(t, m, cmd())
	return m
}

func newLoaded(t *testing.T, f *fakeFetcher) Model {
	t.Helper()
	m := NewModel(context.Background(), f, WithTheme(themes.Plain), WithSize(100, 20), WithQuery(ledger.Query{PageSize: 2}))
	return settle(t, m, m.Init()())
}

func TestInitLoadsFirstPage(t *testing.T) {
	f := &fakeFetcher{expenses: sampleExpenses(5)}
	m := newLoaded(t, f)

	require.Len(t, f.queries, 1)
	assert.Equal(t, service.SortByDate, f.queries[0].SortKey)
	assert.Equal(t, service.Descending, f.queries[0].Direction)
	require.NotNil(t, m.Page())
	assert.Len(t, m.Page().Items, 2)

	view := m.View()
	assert.Contains(t, view, "Page 1 of 3")
	assert.Contains(t, view, "5 expenses")
	assert.Contains(t, view, "2025-03-01")
	assert.Contains(t, view, "1.00")
}

func TestPaging(t *testing.T) {
	f := &fakeFetcher{expenses: sampleExpenses(5)}
	m := newLoaded(t, f)

	// Already on the first page
	_, cmd := step(t, m, keyRune('p'))
	assert.Nil(t, cmd)

	m = settle(t, m, keyRune('n'))
	assert.Equal(t, 1, m.Query().Page)
	assert.Contains(t, m.View(), "2025-03-03")

	m = settle(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.Query().Page)
	assert.Len(t, m.Page().Items, 1)

	// Last page
	_, cmd = step(t, m, keyRune('n'))
	assert.Nil(t, cmd)

	m = settle(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, m.Query().Page)
	assert.Contains(t, m.View(), "Page 2 of 3")
}

func TestSortKeys(t *testing.T) {
	f := &fakeFetcher{expenses: sampleExpenses(5)}
	m := newLoaded(t, f)
	m = settle(t, m, keyRune('n'))

	m = settle(t, m, keyRune('s'))
	assert.Equal(t, service.Ascending, m.Query().Direction)
	assert.Equal(t, 0, m.Query().Page)

	m = settle(t, m, keyRune('s'))
	assert.Equal(t, service.Descending, m.Query().Direction)

	m = settle(t, m, keyRune('o'))
	assert.Equal(t, service.SortByAmount, m.Query().SortKey)
	m = settle(t, m, keyRune('o'))
	assert.Equal(t, service.SortByCreatedAt, m.Query().SortKey)
	m = settle(t, m, keyRune('o'))
	assert.Equal(t, service.SortByDate, m.Query().SortKey)
	assert.Contains(t, m.View(), "sorted by date desc")
}

func TestQuit(t *testing.T) {
	m := newLoaded(t, &fakeFetcher{expenses: sampleExpenses(1)})

	m, cmd := step(t, m, keyRune('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestFetchErrorKeepsCurrentPage(t *testing.T) {
	f := &fakeFetcher{expenses: sampleExpenses(5)}
	m := newLoaded(t, f)

	f.err = errors.New("database is locked")
	m = settle(t, m, keyRune('n'))

	assert.Equal(t, 0, m.Query().Page)
	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "database is locked")

	f.err = nil
	m = settle(t, m, keyRune('r'))
	assert.NoError(t, m.Err())
	assert.NotContains(t, m.View(), "Error:")
}

func TestEmptyResult(t *testing.T) {
	m := newLoaded(t, &fakeFetcher{})
	view := m.View()
	assert.Contains(t, view, "No expenses match.")
	assert.Contains(t, view, "Page 1 of 1")

	_, cmd := step(t, m, keyRune('n'))
	assert.Nil(t, cmd)
}

func TestWindowResize(t *testing.T) {
	m := newLoaded(t, &fakeFetcher{expenses: sampleExpenses(2)})
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 60, Height: 10})
	assert.Equal(t, 60, m.width)
	assert.Equal(t, 5, m.table.Height())
}

func TestLedgerBackedFetcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cats := db.MustSeedDefaults()
	alice := db.MustCreateUser("Alice")
	food := cats.MustFind(t, "Food")
	db.MustAddExpense(alice.ID, food.ID, "4.00", "2025-03-01")
	db.MustAddExpense(alice.ID, food.ID, "9.00", "2025-03-02")
	db.MustAddExpense(alice.ID, food.ID, "1.00", "2025-03-03")

	l := ledger.New(db.Storage, db.Clock)
	fetcher := PageFetcherFunc(func(ctx context.Context, q ledger.Query) (*service.ExpensePage, error) {
		return l.List(ctx, alice.ID, q)
	})

	m := NewModel(context.Background(), fetcher, WithTheme(themes.Plain), WithQuery(ledger.Query{PageSize: 2, SortKey: service.SortByAmount}))
	m = settle(t, m, m.Init()())
	require.NotNil(t, m.Page())
	assert.Equal(t, "9.00", m.Page().Items[0].Amount.String())
	assert.Equal(t, 2, m.Page().TotalPages)

	m = settle(t, m, keyRune('n'))
	require.Len(t, m.Page().Items, 1)
	assert.Equal(t, "1.00", m.Page().Items[0].Amount.String())
	assert.True(t, strings.Contains(m.View(), "Food"))
}
