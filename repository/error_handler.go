package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alertify/go-alertify-server/types"
)

// handlePgError maps driver errors onto the shared sentinel errors so callers
// never branch on backend specifics.
func handlePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation (users.email)
			return types.ErrUserExists
		case "23503": // foreign_key_violation (reminders.user_id)
			return types.ErrBadRequest
		}
	}
	return err
}
