package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"txdash/internal/store"
	"txdash/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	// Missing file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil || s.Len() != 0 {
		t.Fatalf("expected empty store for missing file, got len=%d err=%v", s.Len(), err)
	}

	path := filepath.Join(dir, "seed.json")
	body := `[{"id":7,"title":"a","price":1,"dateOfSale":"2024-03-01T00:00:00Z"},{"id":3,"title":"b","price":2,"dateOfSale":"2024-03-02T00:00:00Z"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	page, err := s.Search(context.Background(), searchMarch2024())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 2 || page.Items[0].ID != 1 || page.Items[1].ID != 2 {
		t.Fatalf("ids should be store-assigned in file order: %+v", page.Items)
	}

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatalf("expected error for malformed seed file")
	}
}
