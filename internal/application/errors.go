package application

import (
	"context"
	"errors"

	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

// asStoreError leaves domain errors and context cancellation untouched and
// classifies anything else as a store outage.
func asStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.NewStoreUnavailableError(op, err)
}
