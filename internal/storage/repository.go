package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"

	"txdash/internal/core"
)

// dateLayout keeps date_of_sale fixed-width so that string comparison in
// SQL follows chronological order.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

const transactionColumns = `id, title, description, price, category, sold, date_of_sale, image`

// fold lowers text the same way the in-memory store does; SQLite's own
// lower() only handles ASCII. price_bucket applies core.BucketIndex.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		case nil:
			return "", nil
		default:
			return strings.ToLower(fmt.Sprint(v)), nil
		}
	})
	sqlite.MustRegisterDeterministicScalarFunction("price_bucket", 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case float64:
			return int64(core.BucketIndex(v)), nil
		case int64:
			return int64(core.BucketIndex(float64(v))), nil
		default:
			return int64(0), nil
		}
	})
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the pool exists so no connection sees the old schema.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements store.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReplaceAll implements store.TransactionSeeder. The delete and the bulk
// insert run in one database transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, txs []core.Transaction) (int, error) {
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer dbtx.Rollback()

	deleted, err := dbtx.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}

	stmt, err := dbtx.PrepareContext(ctx, `INSERT INTO transactions
		(title, description, price, category, sold, date_of_sale, image)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, tx := range txs {
		if _, err := stmt.ExecContext(ctx,
			tx.Title,
			tx.Description,
			tx.Price,
			tx.Category,
			boolToInt(tx.Sold),
			formatDate(tx.DateOfSale),
			tx.Image,
		); err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}

	removed, _ := deleted.RowsAffected()
	slog.InfoContext(ctx, "Transactions replaced in SQLite",
		"removed", removed,
		"inserted", len(txs))

	return len(txs), nil
}

// Search implements store.TransactionReader
func (r *SQLiteRepository) Search(ctx context.Context, q core.SearchQuery) (core.Page, error) {
	if err := q.Validate(); err != nil {
		return core.Page{}, err
	}

	where, args := searchFilter(q)
	page := core.Page{Items: []core.Transaction{}}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&page.Total); err != nil {
		return core.Page{}, fmt.Errorf("count transactions: %w", err)
	}
	if page.Total <= int64(q.Offset()) {
		return page, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+where+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, q.PageSize, q.Offset())...)
	if err != nil {
		return core.Page{}, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return core.Page{}, err
		}
		page.Items = append(page.Items, tx)
	}
	if err := rows.Err(); err != nil {
		return core.Page{}, fmt.Errorf("iterate transactions: %w", err)
	}

	return page, nil
}

// Statistics implements store.TransactionReader
func (r *SQLiteRepository) Statistics(ctx context.Context, month core.MonthRange) (core.Statistics, error) {
	var stats core.Statistics
	err := r.db.QueryRowContext(ctx, `
		SELECT
			TOTAL(CASE WHEN sold = 1 THEN price END),
			COUNT(CASE WHEN sold = 1 THEN 1 END),
			COUNT(CASE WHEN sold = 0 THEN 1 END)
		FROM transactions
		WHERE date_of_sale >= ? AND date_of_sale < ?`,
		formatDate(month.Start), formatDate(month.End),
	).Scan(&stats.TotalSales, &stats.SoldItems, &stats.UnsoldItems)
	if err != nil {
		return core.Statistics{}, fmt.Errorf("month statistics (%s): %w", month, err)
	}
	return stats, nil
}

// PriceHistogram implements store.TransactionReader
func (r *SQLiteRepository) PriceHistogram(ctx context.Context, month core.MonthRange) ([]core.BucketCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT price_bucket(price) AS bucket, COUNT(*)
		FROM transactions
		WHERE date_of_sale >= ? AND date_of_sale < ?
		GROUP BY bucket`,
		formatDate(month.Start), formatDate(month.End))
	if err != nil {
		return nil, fmt.Errorf("price histogram (%s): %w", month, err)
	}
	defer rows.Close()

	var h core.Histogram
	for rows.Next() {
		var bucket, count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scan histogram row: %w", err)
		}
		if bucket < 0 || bucket >= core.NumBuckets {
			return nil, fmt.Errorf("histogram bucket %d out of range", bucket)
		}
		h[bucket] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate histogram: %w", err)
	}
	return h.Buckets(), nil
}

// CategoryBreakdown implements store.TransactionReader
func (r *SQLiteRepository) CategoryBreakdown(ctx context.Context, month core.MonthRange) ([]core.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM transactions
		WHERE date_of_sale >= ? AND date_of_sale < ?
		GROUP BY category
		ORDER BY category`,
		formatDate(month.Start), formatDate(month.End))
	if err != nil {
		return nil, fmt.Errorf("category breakdown (%s): %w", month, err)
	}
	defer rows.Close()

	out := []core.CategoryCount{}
	for rows.Next() {
		var cc core.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// searchFilter builds the WHERE clause for q. Substring tests use instr so
// that % and _ in the search text match literally.
func searchFilter(q core.SearchQuery) (string, []any) {
	needle := strings.ToLower(q.Text)
	where := `date_of_sale >= ? AND date_of_sale < ?
		AND (instr(fold(title), ?) > 0 OR instr(fold(description), ?) > 0`
	args := []any{formatDate(q.Month.Start), formatDate(q.Month.End), needle, needle}

	if price, ok := q.PriceTerm(); ok {
		where += ` OR price = ?`
		args = append(args, price)
	}
	return where + `)`, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx   core.Transaction
		sold int64
		date string
	)
	if err := row.Scan(&tx.ID, &tx.Title, &tx.Description, &tx.Price, &tx.Category, &sold, &date, &tx.Image); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date_of_sale of transaction %d: %w", tx.ID, err)
	}
	tx.Sold = sold == 1
	tx.DateOfSale = parsed
	return tx, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
