package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Expenses"))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(m.statusLine()))
	b.WriteString("\n")

	if m.page != nil && len(m.page.Items) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No expenses match."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.theme.StatusErr.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keymap))

	return b.String()
}

func (m Model) statusLine() string {
	if m.page == nil {
		return "Loading..."
	}

	pages := max(m.page.TotalPages, 1)
	line := fmt.Sprintf("Page %d of %d · %d expenses · sorted by %s %s",
		m.query.Page+1, pages, m.page.TotalItems, m.query.SortKey, m.query.Direction)
	if m.loading {
		line += " · loading"
	}
	return line
}
