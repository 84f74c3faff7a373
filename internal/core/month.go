// Package core holds the transaction domain: records, month intervals,
// search queries and the aggregate shapes computed over them.
//
// This file resolves user supplied month values into half-open UTC
// intervals using a fixed calendar table, so the result never depends on
// the process locale.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthRange is the half-open interval [Start, End) covering one calendar month.
type MonthRange struct {
	Start time.Time
	End   time.Time
}

var monthTable = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// NewMonthRange returns the interval for the given year and month in UTC.
// time.Date normalizes month 13 into January of the next year, which is how
// End is computed for December.
func NewMonthRange(year int, month time.Month) MonthRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return MonthRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// ParseMonthAt resolves a month name ("March", "mar"), a month number
// ("3", "03") or a "YYYY-MM" value into a MonthRange.
//
// year <= 0 selects the year of now. An explicit year inside "YYYY-MM"
// takes precedence over the year argument. Empty input selects the month
// of now. Anything else yields ErrInvalidParameter.
func ParseMonthAt(input string, year int, now time.Time) (MonthRange, error) {
	if year <= 0 {
		year = now.Year()
	}

	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return NewMonthRange(year, now.Month()), nil
	}

	if len(s) == 7 && s[4] == '-' {
		y, errY := strconv.Atoi(s[:4])
		m, errM := strconv.Atoi(s[5:])
		if errY != nil || errM != nil || y < 1 || m < 1 || m > 12 {
			return MonthRange{}, fmt.Errorf("%w: month %q is not a valid YYYY-MM value", ErrInvalidParameter, input)
		}
		return NewMonthRange(y, time.Month(m)), nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return MonthRange{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidParameter, n)
		}
		return NewMonthRange(year, time.Month(n)), nil
	}

	m, ok := monthTable[s]
	if !ok {
		return MonthRange{}, fmt.Errorf("%w: unknown month %q", ErrInvalidParameter, input)
	}
	return NewMonthRange(year, m), nil
}

// Contains reports whether t falls inside the interval.
func (r MonthRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r MonthRange) String() string {
	return r.Start.Format("2006-01")
}
