package cli

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/spent/internal/model"
)

// Budget usage thresholds, in percent.
const (
	warnThreshold = 80.0
	overThreshold = 100.0
)

// RenderTable lays out rows under headers. Columns listed in rightAligned
// are right-aligned, which suits amounts.
func RenderTable(headers []string, rows [][]string, rightAligned ...int) string {
	right := make(map[int]bool, len(rightAligned))
	for _, c := range rightAligned {
		right[c] = true
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := TableCellStyle
			if row == table.HeaderRow {
				style = TableHeaderStyle
			}
			if right[col] {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
	return t.Render()
}

// UsageBar draws a horizontal bar for percent (0-100+) followed by the
// figure. The bar turns yellow at 80% and red at 100%.
func UsageBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	clamped := math.Max(0, math.Min(percent, 100))
	filled := int(math.Round(clamped / 100 * float64(width)))

	style := SuccessStyle
	switch {
	case percent >= overThreshold:
		style = ErrorStyle
	case percent >= warnThreshold:
		style = WarningStyle
	}

	return style.Render(strings.Repeat("█", filled)) +
		SubtleStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %6.2f%%", percent)
}

// FormatChange renders a month-over-month change with an arrow.
func FormatChange(c model.MonthlyComparison) string {
	switch c.Status {
	case model.Increased:
		return ErrorStyle.Render(fmt.Sprintf("▲ %.2f%%", c.PercentageChange))
	case model.Decreased:
		return SuccessStyle.Render(fmt.Sprintf("▼ %.2f%%", math.Abs(c.PercentageChange)))
	default:
		return SubtleStyle.Render("no change")
	}
}

// FormatAmount renders a money amount in bold.
func FormatAmount(m model.Money) string {
	return BoldStyle.Render(m.String())
}

// FormatRemaining renders what is left of a budget, in red once overspent.
func FormatRemaining(v model.BudgetView) string {
	if v.OverBudget() {
		return ErrorStyle.Render(v.Remaining.String())
	}
	return v.Remaining.String()
}

// NewProgressBar builds the progress bar shown while a long operation walks
// total items.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
