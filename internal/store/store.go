// Package store is the relational persistence layer: users, transactions,
// budgets, and the read-only executor the chat pipeline runs vetted
// statements through.
package store

import (
	"context"
	"time"
)

// Transaction is one income or expense record
type Transaction struct {
	ID       int64     `json:"id"`
	Date     time.Time `json:"date"`
	Merchant string    `json:"merchant"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Type     string    `json:"type"`
	UserID   int64     `json:"user_id"`
}

// Transaction type values
const (
	TypeExpense = "Expense"
	TypeIncome  = "Income"
)

// User is an account row; the password hash never leaves this package's callers
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary aggregates a user's totals
type Summary struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	Balance       float64 `json:"balance"`
}

// Row is one record of a free-form SELECT, keyed by column name
type Row map[string]interface{}

// ResultSet preserves the statement's column order alongside the rows
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Empty reports whether the result set has no rows
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// Store is the persistence interface the API and pipeline depend on
type Store interface {
	// User operations
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// Transaction operations
	AddTransaction(ctx context.Context, t *Transaction) (*Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]Transaction, error)
	GetSummary(ctx context.Context, userID int64) (*Summary, error)

	// Budget operations; budgets are keyed by (user, category)
	GetBudgets(ctx context.Context, userID int64) (map[string]float64, error)
	SetBudget(ctx context.Context, userID int64, category string, amount float64) error

	// ExecuteSelect runs one vetted read-only statement and returns the rows.
	// The caller is responsible for having passed the statement through the
	// safety gate first.
	ExecuteSelect(ctx context.Context, statement string) (*ResultSet, error)

	Ping(ctx context.Context) error
	Close() error
}
