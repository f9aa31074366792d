// Package themes holds the lipgloss styles used by the terminal UI.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Header     lipgloss.Style
	Selected   lipgloss.Style
	Amount     lipgloss.Style
	StatusBar  lipgloss.Style
	StatusErr  lipgloss.Style
	Box        lipgloss.Style
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Foreground lipgloss.Color
	Error      lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary:    lipgloss.Color("#7c3aed"),
	Muted:      lipgloss.Color("#737373"),
	Border:     lipgloss.Color("#404040"),
	Foreground: lipgloss.Color("#fafafa"),
	Error:      lipgloss.Color("#ef4444"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Header: lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		BorderBottom(true).
		Bold(false).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#7c3aed")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Amount: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	StatusBar: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	StatusErr: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
}

// Plain renders without colors or borders. Tests use it to get stable output.
var Plain = Theme{
	Title:     lipgloss.NewStyle(),
	Subtitle:  lipgloss.NewStyle(),
	Header:    lipgloss.NewStyle(),
	Selected:  lipgloss.NewStyle(),
	Amount:    lipgloss.NewStyle(),
	StatusBar: lipgloss.NewStyle(),
	StatusErr: lipgloss.NewStyle(),
	Box:       lipgloss.NewStyle(),
}
