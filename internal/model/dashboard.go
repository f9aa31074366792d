package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DashboardStats summarizes spending for the current month and day.
type DashboardStats struct {
	TotalThisMonth   Money `json:"totalThisMonth"`
	TotalToday       Money `json:"totalToday"`
	AverageDaily     Money `json:"averageDailySpend"`
	TransactionCount int64 `json:"transactionCountThisMonth"`
}

// CategoryTotal is the amount spent in one category over a range.
type CategoryTotal struct {
	Name       string
	Color      string
	Amount     Money
	CategoryID int64
}

// DailyTotal is the amount spent on one calendar date.
type DailyTotal struct {
	Date   time.Time
	Amount Money
}

// CategorySpending is one slice of a category breakdown.
type CategorySpending struct {
	CategoryName  string  `json:"categoryName"`
	CategoryColor string  `json:"categoryColor"`
	Amount        Money   `json:"amount"`
	Percentage    float64 `json:"percentage"`
	CategoryID    int64   `json:"categoryId"`
}

// DailyTrend is one point of a daily spending series.
type DailyTrend struct {
	Date   time.Time `json:"date"`
	Amount Money     `json:"amount"`
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (d DailyTrend) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string `json:"date"`
		Amount Money  `json:"amount"`
	}{Date: FormatDate(d.Date), Amount: d.Amount})
}

// ComparisonStatus is the direction of change between two months.
type ComparisonStatus uint8

// Comparison statuses. The zero value is NoChange.
const (
	NoChange ComparisonStatus = iota
	Increased
	Decreased
)

func (s ComparisonStatus) String() string {
	switch s {
	case Increased:
		return "INCREASED"
	case Decreased:
		return "DECREASED"
	default:
		return "NO_CHANGE"
	}
}

// MarshalText encodes the status by name.
func (s ComparisonStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *ComparisonStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "INCREASED":
		*s = Increased
	case "DECREASED":
		*s = Decreased
	case "NO_CHANGE":
		*s = NoChange
	default:
		return fmt.Errorf("unknown comparison status %q", text)
	}
	return nil
}

// MonthlyComparison compares spending in the current and previous months.
type MonthlyComparison struct {
	CurrentMonth     Money            `json:"currentMonthSpent"`
	PreviousMonth    Money            `json:"previousMonthSpent"`
	PercentageChange float64          `json:"percentageChange"`
	Status           ComparisonStatus `json:"status"`
}

// CompareMonths applies the comparison rule to two monthly totals.
func CompareMonths(current, previous Money) MonthlyComparison {
	cmp := MonthlyComparison{CurrentMonth: current, PreviousMonth: previous}
	switch {
	case previous.IsPositive():
		cmp.PercentageChange = PercentageChange(current, previous)
		switch {
		case cmp.PercentageChange > 0:
			cmp.Status = Increased
		case cmp.PercentageChange < 0:
			cmp.Status = Decreased
		default:
			cmp.Status = NoChange
		}
	case current.IsPositive():
		cmp.PercentageChange = 100.0
		cmp.Status = Increased
	default:
		cmp.PercentageChange = 0.0
		cmp.Status = NoChange
	}
	return cmp
}

// MonthReport gathers everything known about one user's month.
type MonthReport struct {
	GeneratedAt time.Time
	Month       YearMonth
	Total       Money
	Breakdown   []CategorySpending
	Trend       []DailyTrend
	Budgets     []BudgetView
	Expenses    []Expense
	Count       int64
}
