// Package dataset decodes the product transaction seed dataset into
// core transactions.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"txdash/internal/core"
)

// Record mirrors one object of the seed dataset JSON array.
type Record struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Sold        bool    `json:"sold"`
	DateOfSale  string  `json:"dateOfSale"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Decode reads a JSON array of records. A record whose dateOfSale cannot be
// parsed makes the whole dataset invalid.
func Decode(r io.Reader) ([]core.Transaction, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	txs := make([]core.Transaction, 0, len(records))
	for i, rec := range records {
		tx, err := rec.Transaction()
		if err != nil {
			return nil, fmt.Errorf("record %d (id=%d): %w", i, rec.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Transaction converts the record. The dataset id is not kept; the store
// assigns its own identifiers.
func (r Record) Transaction() (core.Transaction, error) {
	soldAt, err := parseDateOfSale(r.DateOfSale)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Sold:        r.Sold,
		DateOfSale:  soldAt,
		Image:       r.Image,
	}
	return tx, tx.Validate()
}

func parseDateOfSale(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.ErrZeroDateOfSale
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable dateOfSale %q", s)
}
