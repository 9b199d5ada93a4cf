package booking

//go:generate mockgen -source=repository.go -destination=../../mocks/booking/repository_mock.go -package=bookingmock

import (
	"context"
)

// ListFilter narrows List. A zero Limit returns every match.
type ListFilter struct {
	Statuses []BookingStatus
	ArtistID *int64
	Page     int
	Limit    int
}

// BookingRepository defines the persistence contract for booking aggregates.
// Every method reads from or writes to the store directly; implementations keep
// no booking state between calls.
type BookingRepository interface {
	// NextID atomically reserves a fresh booking id from the store's sequence.
	NextID(ctx context.Context) (int64, error)

	// Save inserts a new booking. Duplicate id or reference fails with a
	// constraint violation and leaves no row behind.
	Save(ctx context.Context, booking *Booking) error

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// FindByReferenceAndPhone retrieves the booking matching both fields.
	FindByReferenceAndPhone(ctx context.Context, reference, phone string) (*Booking, error)

	// List retrieves bookings matching the filter, newest first, and the total match count.
	List(ctx context.Context, filter ListFilter) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// UpdateStatus applies change only if the stored status still equals
	// change.From; otherwise it fails with a constraint mismatch.
	UpdateStatus(ctx context.Context, change StatusChange) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
