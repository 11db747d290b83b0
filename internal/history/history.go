// Package history stores answered questions with their vetted SQL and serves
// similar past questions back as suggestions.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/ledgerchat/ledgerchat/internal/observability"
)

// Entry is one stored question with its generated SQL
type Entry struct {
	ID         string  `json:"id"`
	Question   string  `json:"question"`
	SQL        string  `json:"sql"`
	Similarity float64 `json:"similarity,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// Store records answered questions and recalls similar ones
type Store interface {
	Record(ctx context.Context, userID int64, question, statement string, embedding []float32) error
	FindSimilar(ctx context.Context, userID int64, embedding []float32, limit int) ([]Entry, error)
}

// PostgresHistory implements Store on the shared PostgreSQL handle using pgvector
type PostgresHistory struct {
	db *sql.DB
}

// NewPostgresHistory creates a history store on an existing database handle
func NewPostgresHistory(db *sql.DB) *PostgresHistory {
	return &PostgresHistory{db: db}
}

// Record stores a question, its vetted SQL and its embedding
func (ph *PostgresHistory) Record(ctx context.Context, userID int64, question, statement string, embedding []float32) error {
	start := time.Now()

	query := `
		INSERT INTO question_history (user_id, question, statement, embedding)
		VALUES ($1, $2, $3, $4)
	`

	_, err := ph.db.ExecContext(ctx, query, userID, question, statement, pgvector.NewVector(embedding))
	observability.RecordDBMetrics("record_history", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record question history: %w", err)
	}

	return nil
}

// FindSimilar returns the user's past questions closest to the embedding,
// most similar first. Cosine distance via pgvector's <=> operator.
func (ph *PostgresHistory) FindSimilar(ctx context.Context, userID int64, embedding []float32, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 5
	}

	start := time.Now()

	query := `
		SELECT id, question, statement,
		       1 - (embedding <=> $2) AS similarity,
		       created_at
		FROM question_history
		WHERE user_id = $1 AND 1 - (embedding <=> $2) > 0.6
		ORDER BY similarity DESC
		LIMIT $3
	`

	rows, err := ph.db.QueryContext(ctx, query, userID, pgvector.NewVector(embedding), limit)
	observability.RecordDBMetrics("find_similar", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar questions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Question, &e.SQL, &e.Similarity, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return entries, nil
}
