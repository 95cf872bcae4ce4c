package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate("get video", nil))

	err := translate("get video", pgx.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)

	err = translate("create account", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, "accounts_username_key", DuplicateConstraint(err))

	err = translate("subscribe", &pgconn.PgError{Code: "23514", ConstraintName: "subscriptions_not_self"})
	assert.ErrorIs(t, err, ErrConstraint)

	err = translate("create comment", &pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, err, ErrConstraint)

	other := errors.New("connection reset")
	err = translate("list videos", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDuplicateConstraint(t *testing.T) {
	err := translate("create account", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_lower_idx"})
	assert.Equal(t, "accounts_email_lower_idx", DuplicateConstraint(err))

	raw := &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_lower_idx"}
	assert.Equal(t, "accounts_email_lower_idx", DuplicateConstraint(raw))
	assert.Equal(t, "", DuplicateConstraint(errors.New("x")))
}
