package tui

import (
	"context"

	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/service"
)

// PageFetcher loads one page of expenses.
type PageFetcher interface {
	FetchPage(ctx context.Context, q ledger.Query) (*service.ExpensePage, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, q ledger.Query) (*service.ExpensePage, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, q ledger.Query) (*service.ExpensePage, error) {
	return f(ctx, q)
}

// pageLoadedMsg carries the result of a fetch. query is what was asked for.
type pageLoadedMsg struct {
	err   error
	page  *service.ExpensePage
	query ledger.Query
}
