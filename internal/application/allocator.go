package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

// DefaultAllocationAttempts bounds the insert retries of ReferenceAllocator.Create.
const DefaultAllocationAttempts = 5

// ReferenceAllocator hands out booking ids from the store's atomic sequence.
// It holds no counters of its own, so any number of processes may allocate concurrently.
type ReferenceAllocator struct {
	repo        bookingDomain.BookingRepository
	maxAttempts int
	logger      *zap.Logger
}

// NewReferenceAllocator creates a ReferenceAllocator. maxAttempts < 1 uses the default.
func NewReferenceAllocator(repo bookingDomain.BookingRepository, maxAttempts int, logger *zap.Logger) *ReferenceAllocator {
	if maxAttempts < 1 {
		maxAttempts = DefaultAllocationAttempts
	}
	return &ReferenceAllocator{
		repo:        repo,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Allocate returns a fresh, never-before-issued booking id.
func (a *ReferenceAllocator) Allocate(ctx context.Context) (int64, error) {
	id, err := a.repo.NextID(ctx)
	if err != nil {
		return 0, asStoreError("allocate booking id", err)
	}
	return id, nil
}

// Create allocates an id, builds the booking for it and inserts it. A
// duplicate-key rejection (an id or reference taken out of band) is retried
// with a new id until the attempts run out.
func (a *ReferenceAllocator) Create(ctx context.Context, build func(id int64) (*bookingDomain.Booking, error)) (*bookingDomain.Booking, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		id, err := a.Allocate(ctx)
		if err != nil {
			return nil, err
		}

		bk, err := build(id)
		if err != nil {
			return nil, err
		}

		err = a.repo.Save(ctx, bk)
		if err == nil {
			return bk, nil
		}
		if !errors.Is(err, domain.ErrConstraintViolation) {
			return nil, asStoreError("save booking", err)
		}

		a.logger.Warn("booking id already taken, retrying allocation",
			zap.Int64("booking_id", id),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", a.maxAttempts),
		)
	}

	a.logger.Error("booking id allocation exhausted", zap.Int("attempts", a.maxAttempts))
	return nil, domain.NewAllocationExhaustedError(a.maxAttempts)
}
