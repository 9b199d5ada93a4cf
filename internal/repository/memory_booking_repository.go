package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"

	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

// MemoryBookingRepository is an in-process store with the same atomicity
// guarantees as the Postgres schema: a sequence, a unique id and reference,
// and compare-and-set status updates. It backs BOOKING_STORE=memory and unit tests.
type MemoryBookingRepository struct {
	mu          sync.Mutex
	seq         int64
	rows        map[int64]BookingModel
	byReference map[string]int64
}

// NewMemoryBookingRepository creates an empty in-memory store.
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		rows:        make(map[int64]BookingModel),
		byReference: make(map[string]int64),
	}
}

// NextID increments the sequence.
func (r *MemoryBookingRepository) NextID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

// Save inserts a booking, rejecting duplicate ids and references.
func (r *MemoryBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	model := toBookingModel(bk)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[model.ID]; exists {
		return domain.NewConstraintViolationError("duplicate booking key: bookings_pkey", nil)
	}
	if _, exists := r.byReference[model.Reference]; exists {
		return domain.NewConstraintViolationError("duplicate booking key: idx_bookings_reference", nil)
	}
	r.rows[model.ID] = *model
	r.byReference[model.Reference] = model.ID
	return nil
}

// FindByID retrieves a booking by id.
func (r *MemoryBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	model, ok := r.rows[id]
	r.mu.Unlock()
	if !ok {
		return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	return toDomainBooking(&model)
}

// FindByReferenceAndPhone retrieves the booking matching both fields.
func (r *MemoryBookingRepository) FindByReferenceAndPhone(ctx context.Context, reference, phone string) (*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	id, ok := r.byReference[reference]
	model := r.rows[id]
	r.mu.Unlock()
	if !ok || model.Phone != phone {
		return nil, domain.NewNotFoundError("Booking", reference)
	}
	return toDomainBooking(&model)
}

// List returns bookings matching filter, newest first.
func (r *MemoryBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	wanted := make(map[string]bool, len(filter.Statuses))
	for _, s := range filter.Statuses {
		wanted[string(s)] = true
	}

	r.mu.Lock()
	matches := make([]BookingModel, 0, len(r.rows))
	for _, m := range r.rows {
		if len(wanted) > 0 && !wanted[m.Status] {
			continue
		}
		if filter.ArtistID != nil && (m.ArtistID == nil || *m.ArtistID != *filter.ArtistID) {
			continue
		}
		matches = append(matches, m)
	}
	r.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	total := int64(len(matches))
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.Limit
		if start > len(matches) {
			start = len(matches)
		}
		end := start + filter.Limit
		if end > len(matches) {
			end = len(matches)
		}
		matches = matches[start:end]
	}

	bookings := make([]*bookingDomain.Booking, len(matches))
	for i := range matches {
		bk, err := toDomainBooking(&matches[i])
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *MemoryBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, m := range r.rows {
		counts[m.Status]++
	}
	return counts, nil
}

// UpdateStatus applies change if the stored status still equals change.From.
func (r *MemoryBookingRepository) UpdateStatus(ctx context.Context, change bookingDomain.StatusChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.rows[change.BookingID]
	if !ok || m.Status != string(change.From) {
		return domain.NewConstraintMismatchError("booking status was modified by another transaction")
	}

	at := change.At
	m.Status = string(change.To)
	m.Version++
	m.UpdatedAt = at
	switch change.To {
	case bookingDomain.StatusConfirmed:
		m.ConfirmedAt = &at
	case bookingDomain.StatusCompleted:
		m.CompletedAt = &at
	case bookingDomain.StatusCancelled:
		m.CancelledAt = &at
		m.CancelNote = change.CancelNote
	}
	if change.ArtistID != nil {
		artistID := *change.ArtistID
		m.ArtistID = &artistID
	}
	r.rows[m.ID] = m
	return nil
}

// Ping always succeeds.
func (r *MemoryBookingRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
