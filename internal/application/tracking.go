package application

import (
	"context"
	"errors"

	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

// trackingNotFoundMessage is the only answer a failed lookup ever gives.
const trackingNotFoundMessage = "no booking matches this reference and phone number"

// TrackingLookup resolves a public reference plus phone number to a booking.
type TrackingLookup struct {
	repo bookingDomain.BookingRepository
}

// NewTrackingLookup creates a TrackingLookup.
func NewTrackingLookup(repo bookingDomain.BookingRepository) *TrackingLookup {
	return &TrackingLookup{repo: repo}
}

// Find returns the booking only when both reference and phone match. Unknown
// references, wrong phones and blank input all produce the same NotFound.
func (t *TrackingLookup) Find(ctx context.Context, reference, phone string) (*bookingDomain.Booking, error) {
	ref := bookingDomain.NormalizeReference(reference)
	ph := bookingDomain.NormalizePhone(phone)
	if ref == "" || ph == "" {
		return nil, trackingNotFound()
	}

	bk, err := t.repo.FindByReferenceAndPhone(ctx, ref, ph)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, trackingNotFound()
		}
		return nil, asStoreError("track booking", err)
	}
	if bk.Reference() != ref || bk.Phone() != ph {
		return nil, trackingNotFound()
	}
	return bk, nil
}

func trackingNotFound() error {
	return &domain.AppError{Code: domain.CodeNotFound, Message: trackingNotFoundMessage}
}
