package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// IsConstraintViolation reports whether err came from the database
// rejecting a write for a uniqueness, foreign-key, or check constraint.
// It understands both drivers so callers never inspect driver errors.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23 — integrity constraint violation.
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23"
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code == sqlite3.ErrConstraint
	}
	return false
}
