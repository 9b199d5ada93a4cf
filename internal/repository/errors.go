package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// translateError maps driver errors onto the domain taxonomy. Context
// cancellation passes through untouched so callers can tell an abort from an outage.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.NewConstraintViolationError("duplicate booking key: "+pgErr.ConstraintName, err)
	}
	return domain.NewStoreUnavailableError(op, err)
}
