// Package report renders the month dashboard and search pages as terminal
// tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"txdash/internal/core"
)

// WriteDashboard prints statistics, the price histogram and the category
// breakdown for month.
func WriteDashboard(w io.Writer, month core.MonthRange, d core.Dashboard) {
	fmt.Fprintf(w, "\n=== Transactions dashboard %s ===\n\n", month)

	stats := tablewriter.NewWriter(w)
	stats.SetHeader([]string{"Total sales", "Sold items", "Unsold items"})
	stats.Append([]string{
		formatPrice(d.Statistics.TotalSales),
		strconv.FormatInt(d.Statistics.SoldItems, 10),
		strconv.FormatInt(d.Statistics.UnsoldItems, 10),
	})
	stats.Render()

	fmt.Fprintln(w, "\nPrice range")
	bars := tablewriter.NewWriter(w)
	bars.SetHeader([]string{"Range", "Items"})
	bars.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, b := range d.BarChart {
		bars.Append([]string{b.Label, strconv.FormatInt(b.Count, 10)})
	}
	bars.Render()

	fmt.Fprintln(w, "\nCategories")
	pie := tablewriter.NewWriter(w)
	pie.SetHeader([]string{"Category", "Items"})
	var total int64
	for _, c := range d.PieChart {
		pie.Append([]string{categoryLabel(c.Category), strconv.FormatInt(c.Count, 10)})
		total += c.Count
	}
	pie.SetFooter([]string{"Total", strconv.FormatInt(total, 10)})
	pie.Render()
}

// WritePage prints one page of search results.
func WritePage(w io.Writer, q core.SearchQuery, page core.Page) {
	fmt.Fprintf(w, "\nPage %d (%d per page), %d matches\n", q.Page, q.PageSize, page.Total)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Price", "Category", "Sold", "Date of sale"})
	for _, tx := range page.Items {
		sold := "no"
		if tx.Sold {
			sold = "yes"
		}
		table.Append([]string{
			strconv.FormatInt(tx.ID, 10),
			tx.Title,
			formatPrice(tx.Price),
			categoryLabel(tx.Category),
			sold,
			tx.DateOfSale.UTC().Format(time.DateOnly),
		})
	}
	table.Render()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func categoryLabel(c string) string {
	if c == "" {
		return "(none)"
	}
	return c
}
