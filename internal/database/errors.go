package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate")
	// ErrConstraint is returned for other integrity violations (foreign keys, checks)
	ErrConstraint = errors.New("constraint violation")
)

// Unique indexes on accounts, reported by DuplicateConstraint
const (
	AccountsUsernameIndex = "accounts_username_lower_idx"
	AccountsEmailIndex    = "accounts_email_lower_idx"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translate maps driver errors onto the package sentinels, keeping the original for context
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
		case pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// DuplicateConstraint returns the name of the unique constraint behind err, if any
func DuplicateConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

func fmtNotFound(op string) error {
	return fmt.Errorf("%s: %w", op, ErrNotFound)
}

func fmtDuplicate(op string) error {
	return fmt.Errorf("%s: %w", op, ErrDuplicate)
}
