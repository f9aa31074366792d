package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/tui/themes"
)

// Chrome lines around the table: title, status, blank, help.
const chromeHeight = 5

var sortCycle = []service.SortKey{service.SortByDate, service.SortByAmount, service.SortByCreatedAt}

// Model is the expense browser. Only one page is held in memory at a time.
type Model struct {
	ctx      context.Context
	fetcher  PageFetcher
	err      error
	page     *service.ExpensePage
	theme    themes.Theme
	query    ledger.Query
	keymap   KeyMap
	help     help.Model
	table    table.Model
	width    int
	height   int
	loading  bool
	quitting bool
}

// NewModel creates a browser that fetches pages with fetcher.
func NewModel(ctx context.Context, fetcher PageFetcher, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	q := cfg.Query
	if q.SortKey == "" {
		q.SortKey = service.SortByDate
	}
	if q.Direction == "" {
		q.Direction = service.Descending
	}
	if q.PageSize == 0 {
		q.PageSize = ledger.DefaultPageSize
	}

	t := table.New(
		table.WithColumns(columns(cfg.Width)),
		table.WithFocused(true),
		table.WithHeight(max(cfg.Height-chromeHeight, 3)),
	)
	s := table.DefaultStyles()
	s.Header = cfg.Theme.Header
	s.Selected = cfg.Theme.Selected
	t.SetStyles(s)

	return Model{
		ctx:     ctx,
		fetcher: fetcher,
		theme:   cfg.Theme,
		query:   q,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		table:   t,
		width:   cfg.Width,
		height:  cfg.Height,
		loading: true,
	}
}

// Init fetches the first page.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		m.help.Width = msg.Width
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.page = msg.page
		m.query = msg.query
		m.table.SetRows(rows(msg.page.Items))
		m.table.GotoTop()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.NextPage):
		if m.loading || m.page == nil || m.query.Page+1 >= m.page.TotalPages {
			return m, nil
		}
		q := m.query
		q.Page++
		return m.load(q)

	case key.Matches(msg, m.keymap.PrevPage):
		if m.loading || m.query.Page == 0 {
			return m, nil
		}
		q := m.query
		q.Page--
		return m.load(q)

	case key.Matches(msg, m.keymap.ToggleDirection):
		q := m.query
		if q.Direction == service.Ascending {
			q.Direction = service.Descending
		} else {
			q.Direction = service.Ascending
		}
		q.Page = 0
		return m.load(q)

	case key.Matches(msg, m.keymap.CycleSort):
		q := m.query
		q.SortKey = nextSortKey(q.SortKey)
		q.Page = 0
		return m.load(q)

	case key.Matches(msg, m.keymap.Refresh):
		return m.load(m.query)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// load starts fetching q. The current page stays on screen until it arrives.
func (m Model) load(q ledger.Query) (tea.Model, tea.Cmd) {
	m.loading = true
	next := m
	next.query = q
	return m, next.fetch()
}

func (m Model) fetch() tea.Cmd {
	ctx, fetcher, q := m.ctx, m.fetcher, m.query
	return func() tea.Msg {
		page, err := fetcher.FetchPage(ctx, q)
		if err != nil {
			return pageLoadedMsg{err: fmt.Errorf("failed to load expenses: %w", err), query: q}
		}
		return pageLoadedMsg{page: page, query: q}
	}
}

// Query returns the query of the page currently displayed.
func (m Model) Query() ledger.Query {
	return m.query
}

// Page returns the page currently displayed, or nil before the first load.
func (m Model) Page() *service.ExpensePage {
	return m.page
}

// Err returns the last fetch error, if any.
func (m Model) Err() error {
	return m.err
}

func nextSortKey(current service.SortKey) service.SortKey {
	for i, k := range sortCycle {
		if k == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

func columns(width int) []table.Column {
	// Date, category, method and amount are fixed; description takes the rest.
	const fixed = 10 + 14 + 13 + 12 + 10
	desc := max(width-fixed, 12)
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Category", Width: 14},
		{Title: "Description", Width: desc},
		{Title: "Method", Width: 13},
		{Title: "Amount", Width: 12},
	}
}

func rows(expenses []model.Expense) []table.Row {
	out := make([]table.Row, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, table.Row{
			model.FormatDate(e.Date),
			e.CategoryName,
			e.DescriptionOrEmpty(),
			string(e.PaymentMethod),
			fmt.Sprintf("%12s", e.Amount.String()),
		})
	}
	return out
}
