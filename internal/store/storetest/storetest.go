// Package storetest holds behaviour tests shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"txdash/internal/core"
	"txdash/internal/store"
)

// Factory returns an empty store for one test.
type Factory func(t *testing.T) store.Store

var (
	March2024  = core.NewMonthRange(2024, time.March)
	categories = []string{"electronics", "jewelery", "men's clothing", "women's clothing", ""}
)

// Fixture returns a deterministic collection: 38 records inside March 2024
// plus records sitting just outside both ends of the month.
func Fixture() []core.Transaction {
	var txs []core.Transaction
	txs = append(txs,
		core.Transaction{Title: "Late February", Description: "outside", Price: 10, Category: "electronics", Sold: true,
			DateOfSale: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)},
		core.Transaction{Title: "First of March", Description: "inside", Price: 900, Category: "electronics", Sold: true,
			DateOfSale: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	)
	for i := 0; i < 36; i++ {
		txs = append(txs, core.Transaction{
			Title:       fmt.Sprintf("Item %02d", i),
			Description: fmt.Sprintf("Generated product number %d", i),
			Price:       float64(i*37%1000) + 0.5,
			Category:    categories[i%len(categories)],
			Sold:        i%3 != 0,
			DateOfSale:  time.Date(2024, 3, 1+i%28, i%24, 0, 0, 0, time.UTC),
			Image:       fmt.Sprintf("https://example.test/%d.jpg", i),
		})
	}
	txs = append(txs,
		core.Transaction{Title: "Mobile phone 150", Description: "budget", Price: 150, Category: "electronics", Sold: false,
			DateOfSale: time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)},
		core.Transaction{Title: "April fool", Description: "outside", Price: 150, Category: "electronics", Sold: true,
			DateOfSale: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	)
	return txs
}

func inMonth(txs []core.Transaction, month core.MonthRange) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if month.Contains(tx.DateOfSale) {
			out = append(out, tx)
		}
	}
	return out
}

func seeded(t *testing.T, newStore Factory, txs []core.Transaction) store.Store {
	t.Helper()
	s := newStore(t)
	n, err := s.ReplaceAll(context.Background(), txs)
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if n != len(txs) {
		t.Fatalf("ReplaceAll stored %d, want %d", n, len(txs))
	}
	return s
}

// Run executes the whole suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Scenario", func(t *testing.T) { testScenario(t, newStore) })
	t.Run("SoldPlusUnsoldEqualsMonthCount", func(t *testing.T) { testStatisticsCounts(t, newStore) })
	t.Run("PagesReproduceFilteredSet", func(t *testing.T) { testPagination(t, newStore) })
	t.Run("EmptySearchEqualsDateFilter", func(t *testing.T) { testEmptySearch(t, newStore) })
	t.Run("NumericSearch", func(t *testing.T) { testNumericSearch(t, newStore) })
	t.Run("TextSearch", func(t *testing.T) { testTextSearch(t, newStore) })
	t.Run("HistogramSumsToMonthCount", func(t *testing.T) { testHistogram(t, newStore) })
	t.Run("CategoryBreakdown", func(t *testing.T) { testCategoryBreakdown(t, newStore) })
	t.Run("ReplaceAllReplaces", func(t *testing.T) { testReplaceAll(t, newStore) })
	t.Run("InvalidQuery", func(t *testing.T) { testInvalidQuery(t, newStore) })
	t.Run("EmptyMonth", func(t *testing.T) { testEmptyMonth(t, newStore) })
}

func testScenario(t *testing.T, newStore Factory) {
	s := seeded(t, newStore, []core.Transaction{
		{Title: "cheap", Price: 50, Sold: true, Category: "a", DateOfSale: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{Title: "pricey", Price: 950, Sold: false, Category: "b", DateOfSale: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	})
	ctx := context.Background()

	stats, err := s.Statistics(ctx, March2024)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats != (core.Statistics{TotalSales: 50, SoldItems: 1, UnsoldItems: 1}) {
		t.Fatalf("Statistics = %+v", stats)
	}

	buckets, err := s.PriceHistogram(ctx, March2024)
	if err != nil {
		t.Fatalf("PriceHistogram: %v", err)
	}
	if len(buckets) != core.NumBuckets {
		t.Fatalf("len(buckets) = %d", len(buckets))
	}
	for _, b := range buckets {
		want := int64(0)
		if b.Label == "0-99" || b.Label == "900-above" {
			want = 1
		}
		if b.Count != want {
			t.Fatalf("bucket %s = %d, want %d", b.Label, b.Count, want)
		}
	}
}

func testStatisticsCounts(t *testing.T, newStore Factory) {
	txs := Fixture()
	s := seeded(t, newStore, txs)
	stats, err := s.Statistics(context.Background(), March2024)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}

	var want core.Statistics
	for _, tx := range inMonth(txs, March2024) {
		want.Add(tx)
	}
	if stats.SoldItems+stats.UnsoldItems != int64(len(inMonth(txs, March2024))) {
		t.Fatalf("sold %d + unsold %d != %d", stats.SoldItems, stats.UnsoldItems, len(inMonth(txs, March2024)))
	}
	if stats.SoldItems != want.SoldItems || stats.UnsoldItems != want.UnsoldItems {
		t.Fatalf("Statistics = %+v, want %+v", stats, want)
	}
	if diff := stats.TotalSales - want.TotalSales; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("TotalSales = %v, want %v", stats.TotalSales, want.TotalSales)
	}
}

func testPagination(t *testing.T, newStore Factory) {
	txs := Fixture()
	s := seeded(t, newStore, txs)
	ctx := context.Background()

	var all []core.Transaction
	var total int64 = -1
	for page := 1; page < 100; page++ {
		res, err := s.Search(ctx, core.SearchQuery{Page: page, PageSize: 10, Month: March2024})
		if err != nil {
			t.Fatalf("Search page %d: %v", page, err)
		}
		if total == -1 {
			total = res.Total
		} else if res.Total != total {
			t.Fatalf("total changed between pages: %d != %d", res.Total, total)
		}
		all = append(all, res.Items...)
		if len(res.Items) < 10 {
			break
		}
	}

	want := inMonth(txs, March2024)
	if int64(len(all)) != total || len(all) != len(want) {
		t.Fatalf("collected %d items, total %d, want %d", len(all), total, len(want))
	}
	seen := map[int64]bool{}
	for i, tx := range all {
		if seen[tx.ID] {
			t.Fatalf("duplicate id %d", tx.ID)
		}
		seen[tx.ID] = true
		if i > 0 && all[i-1].ID >= tx.ID {
			t.Fatalf("items not in store order at %d: %d then %d", i, all[i-1].ID, tx.ID)
		}
		if tx.Title != want[i].Title {
			t.Fatalf("item %d = %q, want %q", i, tx.Title, want[i].Title)
		}
	}

	past, err := s.Search(ctx, core.SearchQuery{Page: 50, PageSize: 10, Month: March2024})
	if err != nil {
		t.Fatalf("Search past end: %v", err)
	}
	if len(past.Items) != 0 || past.Total != total {
		t.Fatalf("page past end = %d items, total %d", len(past.Items), past.Total)
	}

	// (page-1)*perPage overflows int here.
	far, err := s.Search(ctx, core.SearchQuery{Page: 922337203685477590, PageSize: 10, Month: March2024})
	if err != nil {
		t.Fatalf("Search far past end: %v", err)
	}
	if len(far.Items) != 0 || far.Total != total {
		t.Fatalf("page far past end = %d items, total %d", len(far.Items), far.Total)
	}
}

func testEmptySearch(t *testing.T, newStore Factory) {
	txs := Fixture()
	s := seeded(t, newStore, txs)
	res, err := s.Search(context.Background(), core.SearchQuery{Text: "", Page: 1, PageSize: 5, Month: March2024})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != int64(len(inMonth(txs, March2024))) {
		t.Fatalf("Total = %d, want %d", res.Total, len(inMonth(txs, March2024)))
	}
	if len(res.Items) != 5 {
		t.Fatalf("len(Items) = %d, want 5", len(res.Items))
	}
}

func testNumericSearch(t *testing.T, newStore Factory) {
	s := seeded(t, newStore, []core.Transaction{
		{Title: "Priced exactly", Price: 150, DateOfSale: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "Model 1500", Price: 20, DateOfSale: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
		{Title: "Other", Description: "has 150 inside", Price: 30, DateOfSale: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{Title: "Unrelated", Price: 151, DateOfSale: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{Title: "Wrong month", Price: 150, DateOfSale: time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)},
		{Title: "Fractional", Price: 99.5, DateOfSale: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
	})
	ctx := context.Background()

	res, err := s.Search(ctx, core.SearchQuery{Text: "150", Page: 1, PageSize: 10, Month: March2024})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 3 {
		t.Fatalf("Total = %d, want 3 (%+v)", res.Total, res.Items)
	}
	for i, want := range []string{"Priced exactly", "Model 1500", "Other"} {
		if res.Items[i].Title != want {
			t.Fatalf("item %d = %q, want %q", i, res.Items[i].Title, want)
		}
	}

	res, err = s.Search(ctx, core.SearchQuery{Text: "99.5", Page: 1, PageSize: 10, Month: March2024})
	if err != nil {
		t.Fatalf("Search fractional: %v", err)
	}
	if res.Total != 1 || res.Items[0].Title != "Fractional" {
		t.Fatalf("fractional search = %+v", res)
	}

	// Non-numeric text never reaches the price clause.
	res, err = s.Search(ctx, core.SearchQuery{Text: "150 units", Page: 1, PageSize: 10, Month: March2024})
	if err != nil {
		t.Fatalf("Search non-numeric: %v", err)
	}
	if res.Total != 0 {
		t.Fatalf("non-numeric search Total = %d, want 0", res.Total)
	}
}

func testTextSearch(t *testing.T, newStore Factory) {
	s := seeded(t, newStore, Fixture())
	ctx := context.Background()

	res, err := s.Search(ctx, core.SearchQuery{Text: "ITEM 0", Page: 1, PageSize: 100, Month: March2024})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 10 {
		t.Fatalf("Total = %d, want 10", res.Total)
	}

	res, err = s.Search(ctx, core.SearchQuery{Text: "product number 35", Page: 1, PageSize: 100, Month: March2024})
	if err != nil {
		t.Fatalf("Search description: %v", err)
	}
	if res.Total != 1 || res.Items[0].Title != "Item 35" {
		t.Fatalf("description search = %+v", res)
	}

	res, err = s.Search(ctx, core.SearchQuery{Text: "100%_", Page: 1, PageSize: 100, Month: March2024})
	if err != nil {
		t.Fatalf("Search wildcard characters: %v", err)
	}
	if res.Total != 0 {
		t.Fatalf("wildcard characters must match literally, Total = %d", res.Total)
	}
}

func testHistogram(t *testing.T, newStore Factory) {
	txs := Fixture()
	s := seeded(t, newStore, txs)
	buckets, err := s.PriceHistogram(context.Background(), March2024)
	if err != nil {
		t.Fatalf("PriceHistogram: %v", err)
	}

	var want core.Histogram
	for _, tx := range inMonth(txs, March2024) {
		want.Add(tx.Price)
	}
	var sum int64
	for i, b := range buckets {
		if b != want.Buckets()[i] {
			t.Fatalf("bucket %d = %+v, want %+v", i, b, want.Buckets()[i])
		}
		sum += b.Count
	}
	if sum != int64(len(inMonth(txs, March2024))) {
		t.Fatalf("histogram sums to %d, want %d", sum, len(inMonth(txs, March2024)))
	}
}

func testCategoryBreakdown(t *testing.T, newStore Factory) {
	txs := Fixture()
	s := seeded(t, newStore, txs)
	got, err := s.CategoryBreakdown(context.Background(), March2024)
	if err != nil {
		t.Fatalf("CategoryBreakdown: %v", err)
	}

	tally := map[string]int64{}
	for _, tx := range inMonth(txs, March2024) {
		tally[tx.Category]++
	}
	want := core.CategoryCounts(tally)
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[0].Category != "" {
		t.Fatalf("empty category should be its own group, got %+v", got)
	}
}

func testReplaceAll(t *testing.T, newStore Factory) {
	s := seeded(t, newStore, Fixture())
	ctx := context.Background()

	next := []core.Transaction{{Title: "Only one", Price: 1, DateOfSale: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}}
	if _, err := s.ReplaceAll(ctx, next); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	res, err := s.Search(ctx, core.SearchQuery{Page: 1, PageSize: 10, Month: March2024})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 1 || res.Items[0].Title != "Only one" || res.Items[0].ID == 0 {
		t.Fatalf("after ReplaceAll = %+v", res)
	}

	if _, err := s.ReplaceAll(ctx, []core.Transaction{{Title: "no date"}}); err == nil {
		t.Fatalf("expected error for transaction without dateOfSale")
	}
}

func testInvalidQuery(t *testing.T, newStore Factory) {
	s := seeded(t, newStore, Fixture())
	_, err := s.Search(context.Background(), core.SearchQuery{Page: 0, PageSize: 10, Month: March2024})
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func testEmptyMonth(t *testing.T, newStore Factory) {
	s := seeded(t, newStore, Fixture())
	ctx := context.Background()
	june := core.NewMonthRange(2024, time.June)

	stats, err := s.Statistics(ctx, june)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats != (core.Statistics{}) {
		t.Fatalf("Statistics for empty month = %+v", stats)
	}
	cats, err := s.CategoryBreakdown(ctx, june)
	if err != nil {
		t.Fatalf("CategoryBreakdown: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("CategoryBreakdown for empty month = %+v", cats)
	}
	res, err := s.Search(ctx, core.SearchQuery{Page: 1, PageSize: 10, Month: june})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 0 || res.Items == nil {
		t.Fatalf("Search for empty month = %+v (items must be non-nil)", res)
	}
}
