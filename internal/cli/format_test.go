package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/model"
)

func TestUsageBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		width   int
		filled  int
		figure  string
	}{
		{"empty", 0, 10, 0, "0.00%"},
		{"quarter", 25, 20, 5, "25.00%"},
		{"rounds to nearest cell", 33.33, 10, 3, "33.33%"},
		{"full", 100, 10, 10, "100.00%"},
		{"over budget is clamped", 120, 10, 10, "120.00%"},
		{"negative is clamped", -5, 10, 0, "-5.00%"},
		{"default width", 50, 0, 10, "50.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := UsageBar(tt.percent, tt.width)
			width := tt.width
			if width == 0 {
				width = 20
			}
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
			assert.Equal(t, width-tt.filled, strings.Count(bar, "░"))
			assert.Contains(t, bar, tt.figure)
		})
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"Category", "Amount"},
		[][]string{{"Food", "12.50"}, {"Transport", "3.00"}},
		1,
	)
	for _, want := range []string{"Category", "Amount", "Food", "12.50", "Transport", "3.00"} {
		assert.Contains(t, out, want)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.GreaterOrEqual(t, len(lines), 4)
}

func TestFormatChange(t *testing.T) {
	tests := []struct {
		cmp  model.MonthlyComparison
		want string
	}{
		{model.CompareMonths(model.MustParseMoney("150"), model.MustParseMoney("100")), "▲ 50.00%"},
		{model.CompareMonths(model.MustParseMoney("75"), model.MustParseMoney("100")), "▼ 25.00%"},
		{model.CompareMonths(model.MustParseMoney("100"), model.MustParseMoney("100")), "no change"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Contains(t, FormatChange(tt.cmp), tt.want)
		})
	}
}

func TestFormatRemaining(t *testing.T) {
	under := model.BudgetView{MonthlyLimit: model.MustParseMoney("100"), Remaining: model.MustParseMoney("40")}
	over := model.BudgetView{MonthlyLimit: model.MustParseMoney("100"), Remaining: model.MustParseMoney("-10")}

	assert.Contains(t, FormatRemaining(under), "40.00")
	assert.Contains(t, FormatRemaining(over), "-10.00")
}

func TestNewProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 3, "Importing")
	for range 3 {
		require.NoError(t, bar.Add(1))
	}
	assert.Contains(t, out.String(), "Importing")
}
