package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"txdash/internal/core"
	"txdash/internal/dataset"
)

// Store keeps the collection in a slice ordered by ID.
type Store struct {
	mu     sync.RWMutex
	items  []core.Transaction
	nextID int64
}

// New returns a store seeded with txs in the given order.
func New(txs ...core.Transaction) *Store {
	s := &Store{}
	s.replace(txs)
	return s
}

// NewFromFile seeds the store from a dataset JSON file. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	txs, err := dataset.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load seed file %s: %w", path, err)
	}
	return New(txs...), nil
}

// ReplaceAll swaps the whole collection under the write lock.
func (s *Store) ReplaceAll(_ context.Context, txs []core.Transaction) (int, error) {
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(txs)
	return len(txs), nil
}

func (s *Store) replace(txs []core.Transaction) {
	items := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		s.nextID++
		tx.ID = s.nextID
		items[i] = tx
	}
	s.items = items
}

func (s *Store) Search(_ context.Context, q core.SearchQuery) (core.Page, error) {
	if err := q.Validate(); err != nil {
		return core.Page{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := core.Page{Items: []core.Transaction{}}
	offset := int64(q.Offset())
	for _, tx := range s.items {
		if !q.Matches(tx) {
			continue
		}
		if page.Total >= offset && len(page.Items) < q.PageSize {
			page.Items = append(page.Items, tx)
		}
		page.Total++
	}
	return page, nil
}

func (s *Store) Statistics(_ context.Context, month core.MonthRange) (core.Statistics, error) {
	var stats core.Statistics
	s.each(month, stats.Add)
	return stats, nil
}

func (s *Store) PriceHistogram(_ context.Context, month core.MonthRange) ([]core.BucketCount, error) {
	var h core.Histogram
	s.each(month, func(tx core.Transaction) { h.Add(tx.Price) })
	return h.Buckets(), nil
}

func (s *Store) CategoryBreakdown(_ context.Context, month core.MonthRange) ([]core.CategoryCount, error) {
	tally := map[string]int64{}
	s.each(month, func(tx core.Transaction) { tally[tx.Category]++ })
	return core.CategoryCounts(tally), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Count(context.Context) (int64, error) {
	return int64(s.Len()), nil
}

func (s *Store) each(month core.MonthRange, fn func(core.Transaction)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.items {
		if month.Contains(tx.DateOfSale) {
			fn(tx)
		}
	}
}
