package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the expense browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, fetcher PageFetcher, opts ...Option) error {
	if fetcher == nil {
		return fmt.Errorf("page fetcher is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	p := tea.NewProgram(NewModel(ctx, fetcher, opts...), programOpts...)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run expense browser: %w", err)
	}
	return nil
}
