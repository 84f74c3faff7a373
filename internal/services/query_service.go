package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"txdash/internal/core"
	"txdash/internal/store"
)

// MaxPageSize caps perPage on search requests.
const MaxPageSize = 100

// SearchParams is a search request as it arrives from a caller, before the
// month has been resolved.
type SearchParams struct {
	Text    string
	Month   string
	Year    int
	Page    int
	PerPage int
}

// QueryService answers the dashboard's read queries against a store.
type QueryService struct {
	reader store.TransactionReader
	now    func() time.Time
}

func NewQueryService(reader store.TransactionReader) *QueryService {
	return &QueryService{
		reader: reader,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to resolve an empty month.
func (s *QueryService) WithClock(now func() time.Time) *QueryService {
	s.now = now
	return s
}

// ResolveMonth turns the month and year parameters into a UTC interval.
// An empty month means the current one.
func (s *QueryService) ResolveMonth(month string, year int) (core.MonthRange, error) {
	return core.ParseMonthAt(month, year, s.now())
}

func (s *QueryService) Search(ctx context.Context, p SearchParams) (core.Page, core.SearchQuery, error) {
	month, err := s.ResolveMonth(p.Month, p.Year)
	if err != nil {
		return core.Page{}, core.SearchQuery{}, err
	}
	if p.PerPage > MaxPageSize {
		return core.Page{}, core.SearchQuery{}, fmt.Errorf("%w: perPage must be at most %d, got %d", core.ErrInvalidParameter, MaxPageSize, p.PerPage)
	}

	q := core.SearchQuery{
		Text:     p.Text,
		Page:     p.Page,
		PageSize: p.PerPage,
		Month:    month,
	}
	if err := q.Validate(); err != nil {
		return core.Page{}, q, err
	}

	page, err := s.reader.Search(ctx, q)
	if err != nil {
		return core.Page{}, q, fmt.Errorf("search transactions: %w", err)
	}
	return page, q, nil
}

func (s *QueryService) Statistics(ctx context.Context, month string, year int) (core.Statistics, error) {
	r, err := s.ResolveMonth(month, year)
	if err != nil {
		return core.Statistics{}, err
	}
	stats, err := s.reader.Statistics(ctx, r)
	if err != nil {
		return core.Statistics{}, fmt.Errorf("statistics: %w", err)
	}
	return stats, nil
}

func (s *QueryService) PriceHistogram(ctx context.Context, month string, year int) ([]core.BucketCount, error) {
	r, err := s.ResolveMonth(month, year)
	if err != nil {
		return nil, err
	}
	buckets, err := s.reader.PriceHistogram(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("price histogram: %w", err)
	}
	return buckets, nil
}

func (s *QueryService) CategoryBreakdown(ctx context.Context, month string, year int) ([]core.CategoryCount, error) {
	r, err := s.ResolveMonth(month, year)
	if err != nil {
		return nil, err
	}
	categories, err := s.reader.CategoryBreakdown(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return categories, nil
}

// Combined runs the three aggregates concurrently. Any failure fails the
// whole call; there are no partial results.
func (s *QueryService) Combined(ctx context.Context, month string, year int) (core.Dashboard, error) {
	r, err := s.ResolveMonth(month, year)
	if err != nil {
		return core.Dashboard{}, err
	}
	return s.dashboard(ctx, r)
}

func (s *QueryService) dashboard(ctx context.Context, r core.MonthRange) (core.Dashboard, error) {
	var d core.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.reader.Statistics(gctx, r)
		if err != nil {
			return fmt.Errorf("statistics: %w", err)
		}
		d.Statistics = stats
		return nil
	})
	g.Go(func() error {
		buckets, err := s.reader.PriceHistogram(gctx, r)
		if err != nil {
			return fmt.Errorf("price histogram: %w", err)
		}
		d.BarChart = buckets
		return nil
	})
	g.Go(func() error {
		categories, err := s.reader.CategoryBreakdown(gctx, r)
		if err != nil {
			return fmt.Errorf("category breakdown: %w", err)
		}
		d.PieChart = categories
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("combined data for %s: %w", r, err)
	}
	return d, nil
}
