// Package storage owns the persistent expense schema and its low-level
// primitives. It stores dates as text and compares them textually, so
// ordering and range filters are lexicographic, not calendrical; callers
// that write canonical YYYY-MM-DD dates get correct calendar behavior.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendtrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the ledger store over a single SQLite data file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the ledger at dbPath and
// brings its schema up to date. The raw cause of any failure is logged here;
// the returned error carries only a display-safe description.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db}

	if err := repo.checkSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// checkSchema verifies the expenses table actually exists. A missing table
// after migrations is an integrity failure, not an empty ledger.
func (r *SQLiteRepository) checkSchema(ctx context.Context) error {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'expenses'`,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return core.NewNotFound("expenses table missing from ledger schema")
	}
	if err != nil {
		return r.storageError(ctx, "verify schema", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const expenseColumns = "id, date, amount, category, subcategory, note"

// Insert normalizes the text fields and persists a new expense, returning
// the assigned id. Amounts are stored as given; the store does not reject
// zero or negative values.
func (r *SQLiteRepository) Insert(ctx context.Context, date string, amount float64, category, subcategory, note string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses(date, amount, category, subcategory, note) VALUES (?, ?, ?, ?, ?)`,
		core.Normalize(date), amount, core.Normalize(category), core.Normalize(subcategory), core.Normalize(note),
	)
	if err != nil {
		return 0, r.storageError(ctx, "insert expense", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, r.storageError(ctx, "read inserted id", err)
	}

	slog.InfoContext(ctx, "expense saved",
		"id", id,
		"date", core.Normalize(date),
		"amount", amount,
		"category", core.Normalize(category))

	return id, nil
}

// ListAll returns every expense ordered by date descending. Same-date rows
// keep insertion order via the ascending id tie-break.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	return r.list(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, id ASC`)
}

// ListByCategory filters on the normalized category with ListAll's ordering.
func (r *SQLiteRepository) ListByCategory(ctx context.Context, category string) ([]core.Expense, error) {
	return r.list(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE category = ? ORDER BY date DESC, id ASC`,
		core.Normalize(category))
}

// ListByDateRange returns expenses with start <= date <= end, comparing
// textually, with ListAll's ordering.
func (r *SQLiteRepository) ListByDateRange(ctx context.Context, start, end string) ([]core.Expense, error) {
	return r.list(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE date >= ? AND date <= ? ORDER BY date DESC, id ASC`,
		core.Normalize(start), core.Normalize(end))
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.storageError(ctx, "list expenses", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Category, &e.Subcategory, &e.Note); err != nil {
			return nil, r.storageError(ctx, "scan expense row", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storageError(ctx, "iterate expense rows", err)
	}

	return expenses, nil
}

// DeleteByDateAndNote removes every expense matching both normalized fields
// exactly and returns the number of rows removed. Zero is a valid outcome.
func (r *SQLiteRepository) DeleteByDateAndNote(ctx context.Context, date, note string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE date = ? AND note = ?`,
		core.Normalize(date), core.Normalize(note),
	)
	if err != nil {
		return 0, r.storageError(ctx, "delete expenses", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, r.storageError(ctx, "count deleted rows", err)
	}

	slog.InfoContext(ctx, "expenses deleted",
		"date", core.Normalize(date),
		"note", core.Normalize(note),
		"rows", rows)

	return rows, nil
}

// PeriodTotals returns the summed amount and row count for a period,
// optionally restricted to one normalized category. This is the
// authoritative grand total for a window; aggregate consumers must not
// rebuild it from per-category rows.
func (r *SQLiteRepository) PeriodTotals(ctx context.Context, p core.Period, category string) (float64, int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM expenses`
	where, args := periodClause(p)
	if category != "" {
		if where == "" {
			where = "category = ?"
		} else {
			where += " AND category = ?"
		}
		args = append(args, core.Normalize(category))
	}
	if where != "" {
		query += " WHERE " + where
	}

	var total float64
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total, &count); err != nil {
		return 0, 0, r.storageError(ctx, "aggregate period totals", err)
	}

	return total, count, nil
}

// CategoryAggregates returns per-category total, count, average, min, and
// max over a period, sorted by total descending with category name as the
// deterministic tie-break.
func (r *SQLiteRepository) CategoryAggregates(ctx context.Context, p core.Period) ([]core.CategoryAggregate, error) {
	query := `SELECT category, SUM(amount), COUNT(*), AVG(amount), MIN(amount), MAX(amount) FROM expenses`
	where, args := periodClause(p)
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP BY category ORDER BY SUM(amount) DESC, category ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.storageError(ctx, "aggregate categories", err)
	}
	defer rows.Close()

	var aggregates []core.CategoryAggregate
	for rows.Next() {
		var a core.CategoryAggregate
		if err := rows.Scan(&a.Category, &a.Total, &a.Count, &a.Average, &a.Min, &a.Max); err != nil {
			return nil, r.storageError(ctx, "scan category aggregate", err)
		}
		aggregates = append(aggregates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storageError(ctx, "iterate category aggregates", err)
	}

	return aggregates, nil
}

// periodClause translates a period into a predicate over the textual date
// column. Bounded periods are prefix matches: 7 characters for a month
// bucket, 4 for a year.
func periodClause(p core.Period) (string, []any) {
	prefix, ok := p.DatePrefix()
	if !ok {
		return "", nil
	}
	return fmt.Sprintf("substr(date, 1, %d) = ?", len(prefix)), []any{prefix}
}

// storageError logs the raw cause and returns a display-safe StorageError.
func (r *SQLiteRepository) storageError(ctx context.Context, op string, err error) error {
	slog.ErrorContext(ctx, "storage operation failed", "operation", op, "error", err)
	return core.NewStorageError(op, err)
}
