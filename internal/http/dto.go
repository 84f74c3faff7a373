package http

import (
	"time"

	"txdash/internal/core"
)

type messageResponse struct {
	Message string `json:"message"`
}

type transactionResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Sold        bool    `json:"sold"`
	DateOfSale  string  `json:"dateOfSale"`
	Image       string  `json:"image"`
}

type searchResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	PerPage      int                   `json:"perPage"`
}

type statisticsResponse struct {
	TotalSales  float64 `json:"totalSales"`
	SoldItems   int64   `json:"soldItems"`
	UnsoldItems int64   `json:"unsoldItems"`
}

// chartEntry is one bar or slice; the label is sent as _id.
type chartEntry struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

type combinedResponse struct {
	Statistics statisticsResponse `json:"statistics"`
	BarChart   []chartEntry       `json:"barChart"`
	PieChart   []chartEntry       `json:"pieChart"`
}

type initializeResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type seedQueuedResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Backend string `json:"backend,omitempty"`
	Metrics any    `json:"metrics,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Title:       tx.Title,
		Description: tx.Description,
		Price:       tx.Price,
		Category:    tx.Category,
		Sold:        tx.Sold,
		DateOfSale:  tx.DateOfSale.UTC().Format(time.RFC3339),
		Image:       tx.Image,
	}
}

func toSearchResponse(page core.Page, q core.SearchQuery) searchResponse {
	out := searchResponse{
		Transactions: make([]transactionResponse, 0, len(page.Items)),
		Total:        page.Total,
		Page:         q.Page,
		PerPage:      q.PageSize,
	}
	for _, tx := range page.Items {
		out.Transactions = append(out.Transactions, toTransactionResponse(tx))
	}
	return out
}

func toStatisticsResponse(s core.Statistics) statisticsResponse {
	return statisticsResponse{
		TotalSales:  s.TotalSales,
		SoldItems:   s.SoldItems,
		UnsoldItems: s.UnsoldItems,
	}
}

func toBarChart(buckets []core.BucketCount) []chartEntry {
	out := make([]chartEntry, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, chartEntry{ID: b.Label, Count: b.Count})
	}
	return out
}

func toPieChart(categories []core.CategoryCount) []chartEntry {
	out := make([]chartEntry, 0, len(categories))
	for _, c := range categories {
		out = append(out, chartEntry{ID: c.Category, Count: c.Count})
	}
	return out
}

func toCombinedResponse(d core.Dashboard) combinedResponse {
	return combinedResponse{
		Statistics: toStatisticsResponse(d.Statistics),
		BarChart:   toBarChart(d.BarChart),
		PieChart:   toPieChart(d.PieChart),
	}
}
