package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repository provides database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Health pings the database
func (r *Repository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

// withTx runs fn in a transaction, committing only when fn succeeds
func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// deleteLikesOn removes every like pointing at the given targets
func deleteLikesOn(ctx context.Context, tx pgx.Tx, kind string, targetIDs ...string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `DELETE FROM likes WHERE target_kind = $1 AND target_id = ANY($2)`, kind, targetIDs)
	return err
}
