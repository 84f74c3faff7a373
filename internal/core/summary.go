package core

import (
	"math"
	"sort"
)

// Statistics summarizes sales for a month.
type Statistics struct {
	TotalSales  float64 // sum of prices of sold items
	SoldItems   int64
	UnsoldItems int64
}

// Add folds one transaction into the statistics.
func (s *Statistics) Add(t Transaction) {
	if t.Sold {
		s.TotalSales += t.Price
		s.SoldItems++
		return
	}
	s.UnsoldItems++
}

// BucketCount is one bar of the price histogram.
type BucketCount struct {
	Label string
	Count int64
}

// CategoryCount is one slice of the category breakdown.
type CategoryCount struct {
	Category string
	Count    int64
}

// Dashboard bundles every aggregate for a month.
type Dashboard struct {
	Statistics Statistics
	BarChart   []BucketCount
	PieChart   []CategoryCount
}

const (
	BucketWidth = 100
	NumBuckets  = 10
)

var bucketLabels = [NumBuckets]string{
	"0-99", "100-199", "200-299", "300-399", "400-499",
	"500-599", "600-699", "700-799", "800-899", "900-above",
}

// BucketLabels returns the histogram labels in bucket order.
func BucketLabels() []string {
	return append([]string(nil), bucketLabels[:]...)
}

// BucketIndex places a price into its histogram bucket. Buckets are
// lower-inclusive and upper-exclusive; 900 and above share the last
// bucket and negative prices share the first one.
func BucketIndex(price float64) int {
	if price < 0 || math.IsNaN(price) {
		return 0
	}
	if price >= BucketWidth*(NumBuckets-1) {
		return NumBuckets - 1
	}
	return int(math.Floor(price / BucketWidth))
}

// Histogram accumulates counts per price bucket.
type Histogram [NumBuckets]int64

func (h *Histogram) Add(price float64) {
	h[BucketIndex(price)]++
}

// Buckets returns every bucket in order, including empty ones.
func (h Histogram) Buckets() []BucketCount {
	out := make([]BucketCount, NumBuckets)
	for i, label := range bucketLabels {
		out[i] = BucketCount{Label: label, Count: h[i]}
	}
	return out
}

// CategoryCounts converts a category tally into a slice sorted by label.
func CategoryCounts(tally map[string]int64) []CategoryCount {
	out := make([]CategoryCount, 0, len(tally))
	for category, n := range tally {
		out = append(out, CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
