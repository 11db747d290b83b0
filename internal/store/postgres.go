package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ledgerchat/ledgerchat/internal/observability"
)

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string
}

// PostgresStore implements the Store interface on PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and verifies connectivity
func NewPostgresStore(config PostgresConfig) (*PostgresStore, error) {
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Ping tests the database connection
func (ps *PostgresStore) Ping(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

// Close closes the connection pool
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// DB exposes the underlying handle for migrations and health tooling
func (ps *PostgresStore) DB() *sql.DB {
	return ps.db
}

// CreateUser inserts a new account and returns it
func (ps *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	start := time.Now()

	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at
	`

	var user User
	err := ps.db.QueryRowContext(ctx, query, username, passwordHash).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	observability.RecordDBMetrics("create_user", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername looks up an account; sql.ErrNoRows when absent
func (ps *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	start := time.Now()

	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`

	var user User
	err := ps.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	observability.RecordDBMetrics("get_user", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// AddTransaction inserts one transaction for a user
func (ps *PostgresStore) AddTransaction(ctx context.Context, t *Transaction) (*Transaction, error) {
	start := time.Now()

	query := `
		INSERT INTO transactions (date, merchant, amount, category, type, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := ps.db.QueryRowContext(ctx, query,
		t.Date, t.Merchant, t.Amount, t.Category, t.Type, t.UserID,
	).Scan(&t.ID)
	observability.RecordDBMetrics("add_transaction", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return t, nil
}

// ListTransactions fetches a user's transactions, newest first
func (ps *PostgresStore) ListTransactions(ctx context.Context, userID int64) ([]Transaction, error) {
	start := time.Now()

	query := `
		SELECT id, date, merchant, amount, category, type, user_id
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, id DESC
	`

	rows, err := ps.db.QueryContext(ctx, query, userID)
	observability.RecordDBMetrics("list_transactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Merchant, &t.Amount, &t.Category, &t.Type, &t.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// GetSummary computes income, expense and balance totals for a user
func (ps *PostgresStore) GetSummary(ctx context.Context, userID int64) (*Summary, error) {
	start := time.Now()

	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'Income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'Expense'), 0)
		FROM transactions
		WHERE user_id = $1
	`

	var summary Summary
	err := ps.db.QueryRowContext(ctx, query, userID).Scan(&summary.TotalIncome, &summary.TotalExpenses)
	observability.RecordDBMetrics("get_summary", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}

	summary.Balance = summary.TotalIncome - summary.TotalExpenses
	return &summary, nil
}

// GetBudgets fetches a user's budgets as {category: amount}
func (ps *PostgresStore) GetBudgets(ctx context.Context, userID int64) (map[string]float64, error) {
	start := time.Now()

	query := `
		SELECT category, amount
		FROM budgets
		WHERE user_id = $1
	`

	rows, err := ps.db.QueryContext(ctx, query, userID)
	observability.RecordDBMetrics("get_budgets", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := make(map[string]float64)
	for rows.Next() {
		var category string
		var amount float64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets[category] = amount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", err)
	}

	return budgets, nil
}

// SetBudget upserts the budget for (user, category)
func (ps *PostgresStore) SetBudget(ctx context.Context, userID int64, category string, amount float64) error {
	start := time.Now()

	query := `
		INSERT INTO budgets (user_id, category, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, category) DO UPDATE SET amount = EXCLUDED.amount
	`

	_, err := ps.db.ExecContext(ctx, query, userID, category, amount)
	observability.RecordDBMetrics("set_budget", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}

	return nil
}

// ExecuteSelect runs one read-only statement and materializes all rows.
// Column order follows the statement; []byte values come back as strings so
// numerics scanned from NUMERIC columns render cleanly.
func (ps *PostgresStore) ExecuteSelect(ctx context.Context, statement string) (*ResultSet, error) {
	start := time.Now()

	rows, err := ps.db.QueryContext(ctx, statement)
	observability.RecordDBMetrics("execute_select", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case []byte:
		return string(value)
	default:
		return v
	}
}
