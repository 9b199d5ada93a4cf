package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

// DefaultTransitionAttempts bounds how often a transition re-reads after losing a race.
const DefaultTransitionAttempts = 3

// TransitionResult is the outcome of a successful transition.
type TransitionResult struct {
	Booking *bookingDomain.Booking
	From    bookingDomain.BookingStatus
	To      bookingDomain.BookingStatus
}

// LifecycleEngine is the single place where booking status changes are
// validated and written.
type LifecycleEngine struct {
	repo        bookingDomain.BookingRepository
	maxAttempts int
	logger      *zap.Logger
}

// NewLifecycleEngine creates a LifecycleEngine. maxAttempts < 1 uses the default.
func NewLifecycleEngine(repo bookingDomain.BookingRepository, maxAttempts int, logger *zap.Logger) *LifecycleEngine {
	if maxAttempts < 1 {
		maxAttempts = DefaultTransitionAttempts
	}
	return &LifecycleEngine{
		repo:        repo,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Transition moves booking id to target. An illegal edge fails with
// InvalidTransition before anything is written. The write is a compare-and-set
// on the status just read; if another writer got there first the booking is
// re-read and the edge re-validated against its new status.
func (e *LifecycleEngine) Transition(
	ctx context.Context,
	id int64,
	target bookingDomain.BookingStatus,
	opts ...bookingDomain.TransitionOption,
) (*TransitionResult, error) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		bk, err := e.repo.FindByID(ctx, id)
		if err != nil {
			return nil, asStoreError("load booking", err)
		}

		change, err := bk.PlanTransition(target, opts...)
		if err != nil {
			return nil, err
		}

		err = e.repo.UpdateStatus(ctx, change)
		if err == nil {
			bk.Apply(change)
			e.logger.Info("booking status changed",
				zap.Int64("booking_id", id),
				zap.String("from", string(change.From)),
				zap.String("to", string(change.To)),
			)
			return &TransitionResult{Booking: bk, From: change.From, To: change.To}, nil
		}
		if !errors.Is(err, domain.ErrConstraintMismatch) {
			return nil, asStoreError("update booking status", err)
		}

		e.logger.Info("booking status changed concurrently, re-reading",
			zap.Int64("booking_id", id),
			zap.String("expected", string(change.From)),
			zap.String("target", string(target)),
			zap.Int("attempt", attempt),
		)
	}

	// Out of attempts: report the status the winning writer committed.
	bk, err := e.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asStoreError("load booking", err)
	}
	return nil, domain.NewInvalidStateError(string(bk.Status()), string(target))
}
