package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// SearchQuery selects one page of the transactions sold in Month whose
// title or description contains Text, or whose price equals Text when it
// is numeric.
type SearchQuery struct {
	Text     string
	Page     int
	PageSize int
	Month    MonthRange
}

// Page is a window of matching transactions plus the total match count.
type Page struct {
	Items []Transaction
	Total int64
}

func (q SearchQuery) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidParameter, q.Page)
	}
	if q.PageSize < 1 {
		return fmt.Errorf("%w: page size must be at least 1, got %d", ErrInvalidParameter, q.PageSize)
	}
	if q.Month.Start.IsZero() || !q.Month.End.After(q.Month.Start) {
		return fmt.Errorf("%w: month interval is empty", ErrInvalidParameter)
	}
	return nil
}

// Offset is the number of matches skipped before the page starts. It
// saturates at math.MaxInt so a huge page lands past the end instead of
// wrapping around.
func (q SearchQuery) Offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// PriceTerm returns the search text as a price when it is a finite number.
// Non-numeric text disables price matching instead of failing the query.
func (q SearchQuery) PriceTerm() (float64, bool) {
	return ParsePriceTerm(q.Text)
}

// ParsePriceTerm parses s as a finite number after trimming whitespace.
func ParsePriceTerm(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Matches applies the full filter (month AND text/price) to t.
func (q SearchQuery) Matches(t Transaction) bool {
	if !q.Month.Contains(t.DateOfSale) {
		return false
	}
	return q.MatchesText(t)
}

// MatchesText applies only the text/price clause. Empty text matches all.
func (q SearchQuery) MatchesText(t Transaction) bool {
	needle := strings.ToLower(q.Text)
	if strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	if price, ok := q.PriceTerm(); ok {
		return t.Price == price
	}
	return false
}
