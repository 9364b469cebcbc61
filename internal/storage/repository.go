package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"finalerts/internal/core"
	"finalerts/internal/finance"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrBudgetExists = errors.New("budget already exists for this category and period")
	ErrNotRecurring = errors.New("transaction is not recurring")
)

var _ finance.Provider = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Serialize writers; SQLite allows a single one anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateBudget stores a budget and returns its id. Spent is ignored; it is
// always derived from transactions.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	b.Spent = core.Money{}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	var threshold sql.NullInt64
	if b.AlertThreshold != nil {
		threshold = sql.NullInt64{Int64: int64(*b.AlertThreshold), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, amount_cents, alert_threshold, month, year) VALUES (?, ?, ?, ?, ?)`,
		strings.TrimSpace(b.Category), b.Amount.Cents, threshold, b.Month, b.Year)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrBudgetExists
		}
		return 0, fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("budget id: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", id,
		"category", b.Category,
		"amount_cents", b.Amount.Cents,
		"month", b.Month,
		"year", b.Year)
	return id, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateTransaction stores a transaction. A recurring transaction without a
// next due date gets the first occurrence after its date.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if t.Recurring && t.NextDueDate.IsEmpty() && !t.Date.IsEmpty() {
		if s, err := core.ScheduleFor(t.Every); err == nil {
			t.NextDueDate = s.Next(t.Date, t.Date)
		}
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return r.insertTransaction(ctx, r.db, t)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) insertTransaction(ctx context.Context, db execer, t core.Transaction) (int64, error) {
	var every, due sql.NullString
	if t.Recurring {
		every = sql.NullString{String: string(t.Every), Valid: true}
		due = sql.NullString{String: t.NextDueDate.String(), Valid: true}
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO transactions (type, category, description, amount_cents, transaction_date, is_recurring, frequency, next_due_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.Type), strings.TrimSpace(t.Category), t.Description, t.Amount.Cents, t.Date.String(), t.Recurring, every, due)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", t.Type,
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"recurring", t.Recurring)
	return id, nil
}

// MarkBillPaid records the payment of a recurring expense on paidOn and
// moves its next due date past paidOn. It returns the new due date.
func (r *SQLiteRepository) MarkBillPaid(ctx context.Context, id int64, paidOn core.Date) (core.Date, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Date{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	bill, err := scanTransaction(tx.QueryRowContext(ctx, selectTransaction+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Date{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Date{}, err
	}
	if !bill.Recurring {
		return core.Date{}, fmt.Errorf("transaction %d: %w", id, ErrNotRecurring)
	}

	next, err := core.NextDueAfter(bill.Every, bill.NextDueDate, bill.Date, paidOn)
	if err != nil {
		return core.Date{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE transactions SET next_due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		next.String(), id); err != nil {
		return core.Date{}, fmt.Errorf("advance due date: %w", err)
	}

	payment := core.Transaction{
		Type:        core.Expense,
		Category:    bill.Category,
		Description: bill.Description,
		Amount:      bill.Amount,
		Date:        paidOn,
	}
	if _, err := r.insertTransaction(ctx, tx, payment); err != nil {
		return core.Date{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Date{}, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

const selectTransaction = `SELECT id, type, category, description, amount_cents, transaction_date, is_recurring, frequency, next_due_date FROM transactions`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		typ, date string
		every     sql.NullString
		due       sql.NullString
	)
	if err := row.Scan(&t.ID, &typ, &t.Category, &t.Description, &t.Amount.Cents, &date, &t.Recurring, &every, &due); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Date = d
	if every.Valid {
		t.Every = core.RepetitionTypes(every.String)
	}
	if due.Valid {
		if nd, err := core.ParseDate(due.String); err == nil {
			t.NextDueDate = nd
		}
	}
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, where string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// monthBounds returns the first day of the month and of the next one.
func monthBounds(year, month int) (string, string) {
	first := core.NewDate(year, month, 1)
	return first.String(), core.Date{Time: first.AddDate(0, 1, 0)}.String()
}

// ListTransactions returns the transactions dated in the month.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, year int, month int) ([]core.Transaction, error) {
	from, to := monthBounds(year, month)
	return r.queryTransactions(ctx, `WHERE transaction_date >= ? AND transaction_date < ? ORDER BY transaction_date, id`, from, to)
}

// ListBudgets returns the budgets of the month with spent derived from the
// month's expenses in the same category.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, year int, month int) ([]core.Budget, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	from, to := monthBounds(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.category, b.amount_cents, b.alert_threshold, b.month, b.year,
		       COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
		                 WHERE t.type = 'EXPENSE' AND t.category = b.category
		                   AND t.transaction_date >= ? AND t.transaction_date < ?), 0)
		FROM budgets b
		WHERE b.year = ? AND b.month = ?
		ORDER BY b.id`, from, to, year, month)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b         core.Budget
			threshold sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &b.Category, &b.Amount.Cents, &threshold, &b.Month, &b.Year, &b.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if threshold.Valid {
			t := int(threshold.Int64)
			b.AlertThreshold = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetMonthlySummary totals income and expenses of the month.
func (r *SQLiteRepository) GetMonthlySummary(ctx context.Context, year int, month int) (core.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("invalid month: %d", month)
	}
	from, to := monthBounds(year, month)
	s := core.MonthlySummary{Year: year, Month: month}
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount_cents END), 0),
		       COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN amount_cents END), 0)
		FROM transactions
		WHERE transaction_date >= ? AND transaction_date < ?`, from, to).
		Scan(&s.TotalIncome.Cents, &s.TotalExpenses.Cents)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	return s, nil
}

// ListUpcomingRecurring returns recurring expenses due in [from, from+days].
func (r *SQLiteRepository) ListUpcomingRecurring(ctx context.Context, from core.Date, days int) ([]core.UpcomingBill, error) {
	if days < 0 {
		return nil, fmt.Errorf("invalid window: %d days", days)
	}
	txs, err := r.queryTransactions(ctx,
		`WHERE is_recurring = 1 AND type = 'EXPENSE' AND next_due_date BETWEEN ? AND ? ORDER BY next_due_date, id`,
		from.String(), from.AddDays(days).String())
	if err != nil {
		return nil, err
	}
	return core.UpcomingBills(txs, from, days), nil
}
