package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError("op", nil))

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "bookings_pkey"})
	err := translateError("save booking", dup)
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))
	assert.Contains(t, err.Error(), "bookings_pkey")

	check := &pgconn.PgError{Code: "23514", ConstraintName: "chk_bookings_amount"}
	assert.True(t, errors.Is(translateError("save booking", check), domain.ErrStoreUnavailable))

	down := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	err = translateError("find booking", down)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.ErrorIs(t, err, down)

	assert.ErrorIs(t, translateError("find booking", context.DeadlineExceeded), context.DeadlineExceeded)
	assert.False(t, errors.Is(translateError("find booking", context.Canceled), domain.ErrStoreUnavailable))
}
