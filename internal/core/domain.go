package core

import (
	"errors"
	"time"
)

type (
	// Transaction is a single sale record of the dashboard collection.
	Transaction struct {
		ID          int64 // store-assigned, insertion order
		Title       string
		Description string
		Price       float64
		Category    string
		Sold        bool
		DateOfSale  time.Time
		Image       string
	}

	// SeedResult describes a completed replacement of the collection.
	SeedResult struct {
		Count  int
		Source string
	}
)

var (
	// ErrInvalidParameter marks caller input that cannot be interpreted
	// (month, page, page size).
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUpstreamFetch marks a seed dataset that is unreachable or malformed.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrQueueUnavailable is returned when an asynchronous seed is requested
	// without a message broker.
	ErrQueueUnavailable = errors.New("seed queue unavailable")

	ErrZeroDateOfSale = errors.New("dateOfSale cannot be zero")
)

func (t Transaction) Validate() error {
	if t.DateOfSale.IsZero() {
		return ErrZeroDateOfSale
	}
	return nil
}
