package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"newsroom/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index violation.
const uniqueViolation = "23505"

// wrapErr annotates a driver error with the failed operation and classifies
// it: unique violations become models.ErrConflict, other server-side errors
// are returned as-is, and everything else (dial failures, closed pools,
// cancelled contexts) is treated as models.ErrStorageUnavailable.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w: %s", op, models.ErrConflict, pgErr.ConstraintName)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
}

// nullable unwraps an optional value for use as a query argument, mapping
// nil to SQL NULL so COALESCE keeps the current column value.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
