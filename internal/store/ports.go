package store

import (
	"context"

	"txdash/internal/core"
)

// Ports for the record store backends.
type (
	// TransactionReader answers the read-side queries of the dashboard.
	TransactionReader interface {
		// Search returns one page of matching transactions in store order
		// together with the total number of matches.
		Search(ctx context.Context, q core.SearchQuery) (core.Page, error)
		// Statistics sums sold prices and counts sold/unsold items in the month.
		Statistics(ctx context.Context, month core.MonthRange) (core.Statistics, error)
		// PriceHistogram counts transactions of the month per price bucket.
		PriceHistogram(ctx context.Context, month core.MonthRange) ([]core.BucketCount, error)
		// CategoryBreakdown counts transactions of the month per category.
		CategoryBreakdown(ctx context.Context, month core.MonthRange) ([]core.CategoryCount, error)
	}

	// TransactionSeeder replaces the whole collection.
	TransactionSeeder interface {
		ReplaceAll(ctx context.Context, txs []core.Transaction) (int, error)
	}

	// Pinger reports whether the backing store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Counter reports the size of the whole collection.
	Counter interface {
		Count(ctx context.Context) (int64, error)
	}

	// Store is everything a backend provides.
	Store interface {
		TransactionReader
		TransactionSeeder
		Pinger
		Counter
	}
)
