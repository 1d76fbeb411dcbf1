package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"storefront/internal/domain"
)

const uniqueViolation = "23505"

// MapConstraint turns a unique violation into domain.ErrConflict, keeping the
// constraint name for logs. Other errors pass through.
func MapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}
	return err
}
