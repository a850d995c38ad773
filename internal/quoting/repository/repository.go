// Package repository persists the submission log: one row per quote
// attempt, keyed by its external reference ID.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Attempt statuses.
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// Attempt is one row of quote_attempts.
type Attempt struct {
	ExternalReferenceID string     `db:"external_reference_id"`
	SessionID           string     `db:"session_id"`
	QuoteID             *string    `db:"quote_id"`
	Status              string     `db:"status"`
	Premium             *float64   `db:"premium"`
	Excess              *float64   `db:"excess"`
	ErrorKind           *string    `db:"error_kind"`
	ErrorMessage        *string    `db:"error_message"`
	CreatedAt           time.Time  `db:"created_at"`
	ResolvedAt          *time.Time `db:"resolved_at"`
}

// Repository reads and writes quote attempts.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts a, or updates the existing row with the same reference ID.
func (r *Repository) Save(ctx context.Context, a Attempt) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO quote_attempts (
			external_reference_id, session_id, quote_id, status,
			premium, excess, error_kind, error_message, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_reference_id) DO UPDATE SET
			quote_id      = COALESCE(EXCLUDED.quote_id, quote_attempts.quote_id),
			status        = EXCLUDED.status,
			premium       = EXCLUDED.premium,
			excess        = EXCLUDED.excess,
			error_kind    = EXCLUDED.error_kind,
			error_message = EXCLUDED.error_message,
			resolved_at   = EXCLUDED.resolved_at`,
		a.ExternalReferenceID, a.SessionID, a.QuoteID, a.Status,
		a.Premium, a.Excess, a.ErrorKind, a.ErrorMessage, a.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("save quote attempt: %w", err)
	}
	return nil
}

// ListBySession returns the newest attempts of a session first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string, limit int) ([]Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT external_reference_id, session_id, quote_id, status,
			premium::float8, excess::float8, error_kind, error_message,
			created_at, resolved_at
		FROM quote_attempts
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list quote attempts: %w", err)
	}

	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(
			&a.ExternalReferenceID, &a.SessionID, &a.QuoteID, &a.Status,
			&a.Premium, &a.Excess, &a.ErrorKind, &a.ErrorMessage,
			&a.CreatedAt, &a.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quote attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote attempts: %w", err)
	}
	return attempts, nil
}
