package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"txdash/internal/core"
	"txdash/internal/store"
	"txdash/internal/store/storetest"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "txdash.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestRepository(t) })
}

func TestSQLiteRepositoryReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txdash.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	if _, err := repo.ReplaceAll(ctx, storetest.Fixture()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	repo.Close()

	// Second open runs migrations again; they must be a no-op.
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != int64(len(storetest.Fixture())) {
		t.Fatalf("Count = %d, want %d", n, len(storetest.Fixture()))
	}
}

func TestSQLiteRepositoryPreservesFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	when := time.Date(2024, 3, 7, 13, 45, 30, 123000000, time.UTC)

	in := core.Transaction{
		Title:       "ÉCLAIR Maker",
		Description: "Makes éclairs",
		Price:       329.85,
		Category:    "kitchen",
		Sold:        true,
		DateOfSale:  when,
		Image:       "https://example.test/eclair.jpg",
	}
	if _, err := repo.ReplaceAll(ctx, []core.Transaction{in}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	page, err := repo.Search(ctx, core.SearchQuery{Text: "éclair", Page: 1, PageSize: 10, Month: storetest.March2024})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("non-ASCII case-insensitive search Total = %d, want 1", page.Total)
	}
	got := page.Items[0]
	in.ID = got.ID
	if got.ID == 0 || got.Title != in.Title || got.Description != in.Description || got.Price != in.Price ||
		got.Category != in.Category || got.Sold != in.Sold || !got.DateOfSale.Equal(in.DateOfSale) || got.Image != in.Image {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, in)
	}
}

func TestSQLiteRepositoryPing(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	repo.Close()
	if err := repo.Ping(context.Background()); err == nil {
		t.Fatalf("Ping after Close should fail")
	}
}
