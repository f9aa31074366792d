package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the storage and display format of calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidMonth indicates a year or month outside the supported range.
var ErrInvalidMonth = errors.New("invalid month")

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// NewYearMonth validates year and month and returns the YearMonth.
func NewYearMonth(year, month int) (YearMonth, error) {
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: month %d must be between 1 and 12", ErrInvalidMonth, month)
	}
	if year < 1 || year > 9999 {
		return YearMonth{}, fmt.Errorf("%w: year %d must be between 1 and 9999", ErrInvalidMonth, year)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

// YearMonthOf returns the month containing t, in t's location.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses a "YYYY-MM" key.
func ParseMonthKey(key string) (YearMonth, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil || len(key) != 7 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, key)
	}
	return YearMonthOf(t), nil
}

// Key returns the 7-character "YYYY-MM" form used for persistence.
func (ym YearMonth) Key() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) String() string {
	return ym.Key()
}

// Previous returns the preceding calendar month.
func (ym YearMonth) Previous() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// FirstDay returns the first day of the month at midnight UTC.
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns the last day of the month at midnight UTC.
func (ym YearMonth) LastDay() time.Time {
	return ym.FirstDay().AddDate(0, 1, -1)
}

// Range returns the inclusive range covering the whole month.
func (ym YearMonth) Range() DateRange {
	return DateRange{Start: ym.FirstDay(), End: ym.LastDay()}
}

// Label returns a human readable month such as "March 2025".
func (ym YearMonth) Label() string {
	return ym.FirstDay().Format("January 2006")
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DayRange returns a range covering the single date d.
func DayRange(d time.Time) DateRange {
	day := DateOf(d)
	return DateRange{Start: day, End: day}
}

// Contains reports whether the calendar date of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(DateOf(r.Start)) && !d.After(DateOf(r.End))
}

// DateOf strips the time of day from t, keeping its calendar date, and
// returns it at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders a calendar date as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}
