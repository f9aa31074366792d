package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewYearMonth(t *testing.T) {
	ym, err := NewYearMonth(2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "2025-03", ym.Key())
	assert.Equal(t, "March 2025", ym.Label())

	_, err = NewYearMonth(2025, 13)
	require.ErrorIs(t, err, ErrInvalidMonth)
	_, err = NewYearMonth(2025, 0)
	require.ErrorIs(t, err, ErrInvalidMonth)
	_, err = NewYearMonth(0, 1)
	require.ErrorIs(t, err, ErrInvalidMonth)
}

func TestParseMonthKey(t *testing.T) {
	ym, err := ParseMonthKey("2024-11")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2024, Month: time.November}, ym)

	for _, bad := range []string{"2024-1", "2024/11", "24-11", "2024-13", ""} {
		_, err := ParseMonthKey(bad)
		assert.ErrorIs(t, err, ErrInvalidMonth, bad)
	}
}

func TestYearMonthPrevious(t *testing.T) {
	assert.Equal(t, YearMonth{Year: 2024, Month: time.December}, YearMonth{Year: 2025, Month: time.January}.Previous())
	assert.Equal(t, YearMonth{Year: 2025, Month: time.February}, YearMonth{Year: 2025, Month: time.March}.Previous())
}

func TestYearMonthRange(t *testing.T) {
	tests := []struct {
		ym      YearMonth
		lastDay int
	}{
		{YearMonth{Year: 2024, Month: time.February}, 29},
		{YearMonth{Year: 2025, Month: time.February}, 28},
		{YearMonth{Year: 2025, Month: time.April}, 30},
		{YearMonth{Year: 2025, Month: time.December}, 31},
	}
	for _, tt := range tests {
		t.Run(tt.ym.Key(), func(t *testing.T) {
			r := tt.ym.Range()
			assert.Equal(t, 1, r.Start.Day())
			assert.Equal(t, tt.lastDay, r.End.Day())
			assert.Equal(t, tt.ym.Month, r.End.Month())
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	r := YearMonth{Year: 2025, Month: time.March}.Range()
	assert.True(t, r.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)))
}

func TestDateOfKeepsCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	local := time.Date(2025, 3, 1, 2, 0, 0, 0, loc)
	assert.Equal(t, "2025-03-01", FormatDate(local))
}
