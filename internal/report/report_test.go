package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"txdash/internal/core"
)

func TestWriteDashboard(t *testing.T) {
	var h core.Histogram
	h.Add(50)
	h.Add(950)

	d := core.Dashboard{
		Statistics: core.Statistics{TotalSales: 50, SoldItems: 1, UnsoldItems: 1},
		BarChart:   h.Buckets(),
		PieChart:   core.CategoryCounts(map[string]int64{"electronics": 1, "": 1}),
	}

	var buf bytes.Buffer
	WriteDashboard(&buf, core.NewMonthRange(2024, time.March), d)
	out := buf.String()

	for _, want := range []string{"2024-03", "50.00", "900-above", "(none)", "electronics"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePage(t *testing.T) {
	q := core.SearchQuery{Page: 2, PageSize: 1, Month: core.NewMonthRange(2024, time.March)}
	page := core.Page{
		Total: 2,
		Items: []core.Transaction{{
			ID: 7, Title: "Backpack", Price: 109.95, Category: "bags", Sold: true,
			DateOfSale: time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC),
		}},
	}

	var buf bytes.Buffer
	WritePage(&buf, q, page)
	out := buf.String()

	for _, want := range []string{"Page 2", "2 matches", "Backpack", "109.95", "2024-03-09", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
