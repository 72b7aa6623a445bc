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
	"time"

	"bilancio/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound covers both absent rows and rows owned by another user;
	// the two cases are indistinguishable to callers.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a duplicate unique key (e.g. email already registered).
	ErrConflict = errors.New("conflict")
)

// TransactionFilter narrows ListTransactions. Zero values mean "no filter";
// date bounds are inclusive and apply to the calendar date, not created_at.
type TransactionFilter struct {
	Skip      int
	Limit     int
	StartDate core.Date
	EndDate   core.Date
	Type      core.TransactionType
	Category  string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
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

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser persists a new user, assigning the id and creation timestamp.
func (r *Repository) CreateUser(ctx context.Context, email, hashedPassword string) (core.User, error) {
	u := core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (user_id, email, hashed_password, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return core.User{}, ErrConflict
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT user_id, email, hashed_password, created_at FROM users WHERE email = ?", email))
}

func (r *Repository) UserByID(ctx context.Context, id string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT user_id, email, hashed_password, created_at FROM users WHERE user_id = ?", id))
}

func (r *Repository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// CreateTransaction persists a transaction, assigning the id and creation
// timestamp server-side.
func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (transaction_id, user_id, amount_cents, type, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount.Cents, string(tx.Type), tx.Category, tx.Description, tx.Date.String(), tx.CreatedAt,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"type", string(tx.Type),
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	return tx, nil
}

// Transaction fetches one transaction. The lookup is always scoped by both
// id and owner so a foreign id resolves to ErrNotFound.
func (r *Repository) Transaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT transaction_id, user_id, amount_cents, type, category, description, date, created_at
		 FROM transactions WHERE transaction_id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row.Scan)
}

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var (
		tx      core.Transaction
		txType  string
		rawDate string
	)
	err := scan(&tx.ID, &tx.UserID, &tx.Amount.Cents, &txType, &tx.Category, &tx.Description, &rawDate, &tx.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = core.TransactionType(txType)
	date, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", rawDate, err)
	}
	tx.Date = date
	return tx, nil
}

// ListTransactions returns the user's transactions, filters AND-combined,
// ordered by calendar date descending (created_at breaks ties) with
// skip/limit applied after ordering.
func (r *Repository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT transaction_id, user_id, amount_cents, type, category, description, date, created_at
		 FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if !f.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, f.EndDate.String())
	}
	if f.Type != "" {
		query += " AND type = ?"
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}

	query += " ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?"
	limit := f.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	args = append(args, limit, f.Skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// UpdateTransaction overwrites the stored row with tx, scoped by owner.
// Returns ErrNotFound when no row matches.
func (r *Repository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET amount_cents = ?, type = ?, category = ?, description = ?, date = ?
		 WHERE transaction_id = ? AND user_id = ?`,
		tx.Amount.Cents, string(tx.Type), tx.Category, tx.Description, tx.Date.String(), tx.ID, tx.UserID,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, ErrNotFound
	}
	return tx, nil
}

// DeleteTransaction removes the row if present. The bool reports whether a
// row existed; repeating the call returns false, not an error.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE transaction_id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction rows affected: %w", err)
	}
	return n > 0, nil
}

// Balance sums income and expense amounts over the inclusive range.
// An empty or inverted range yields zero sums, never an error.
func (r *Repository) Balance(ctx context.Context, userID string, dr core.DateRange) (core.BalanceResult, error) {
	var res core.BalanceResult
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents END), 0),
		        COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents END), 0)
		 FROM transactions WHERE user_id = ? AND date >= ? AND date <= ?`,
		userID, dr.Start.String(), dr.End.String(),
	).Scan(&res.TotalIncome.Cents, &res.TotalExpenses.Cents)
	if err != nil {
		return core.BalanceResult{}, fmt.Errorf("balance query: %w", err)
	}
	return res, nil
}

// ExpensesByCategory groups expense amounts in range by category. Categories
// without a matching expense are omitted. Ordered by summed amount descending
// then category ascending, which keeps the output deterministic.
func (r *Repository) ExpensesByCategory(ctx context.Context, userID string, dr core.DateRange) ([]core.CategoryAmount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS total
		 FROM transactions
		 WHERE user_id = ? AND type = 'expense' AND date >= ? AND date <= ?
		 GROUP BY category
		 ORDER BY total DESC, category ASC`,
		userID, dr.Start.String(), dr.End.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("expenses by category query: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Category, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		out = append(out, ca)
	}
	return out, rows.Err()
}

// ExpenseTotal sums expenses for one category over the range.
func (r *Repository) ExpenseTotal(ctx context.Context, userID, category string, dr core.DateRange) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM transactions
		 WHERE user_id = ? AND type = 'expense' AND category = ? AND date >= ? AND date <= ?`,
		userID, category, dr.Start.String(), dr.End.String(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("expense total query: %w", err)
	}
	return total, nil
}

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (budget_id, user_id, category, limit_cents, period, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Category, b.LimitAmount.Cents, string(b.Period), b.CreatedAt,
	)
	if isUniqueViolation(err) {
		return core.Budget{}, ErrConflict
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"budget_id", b.ID, "user_id", b.UserID, "category", b.Category, "period", string(b.Period))
	return b, nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	return r.queryBudgets(ctx,
		"SELECT budget_id, user_id, category, limit_cents, period, created_at FROM budgets WHERE user_id = ? ORDER BY created_at", userID)
}

// BudgetsForCategory returns the user's budgets watching one category.
func (r *Repository) BudgetsForCategory(ctx context.Context, userID, category string) ([]core.Budget, error) {
	return r.queryBudgets(ctx,
		"SELECT budget_id, user_id, category, limit_cents, period, created_at FROM budgets WHERE user_id = ? AND category = ?",
		userID, category)
}

func (r *Repository) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b      core.Budget
			period string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.LimitAmount.Cents, &period, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Period = core.Period(period)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE budget_id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete budget rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) CreateAlert(ctx context.Context, a core.Alert) (core.Alert, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (alert_id, user_id, message, alert_type, category, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Message, string(a.AlertType), a.Category, a.IsRead, a.CreatedAt,
	)
	if err != nil {
		return core.Alert{}, fmt.Errorf("create alert: %w", err)
	}
	return a, nil
}

func (r *Repository) ListAlerts(ctx context.Context, userID string) ([]core.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT alert_id, user_id, message, alert_type, category, is_read, created_at
		 FROM alerts WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []core.Alert
	for rows.Next() {
		var (
			a         core.Alert
			alertType string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Message, &alertType, &a.Category, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.AlertType = core.AlertType(alertType)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) MarkAlertRead(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE alerts SET is_read = 1 WHERE alert_id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark alert read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
