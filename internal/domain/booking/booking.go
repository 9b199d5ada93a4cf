package booking

import (
	"fmt"
	"time"

	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

const (
	minPhoneDigits   = 6
	maxPhoneLength   = 32
	maxPurposeLength = 1000
	maxCancelNote    = 500
)

// Draft carries the caller-supplied fields of a booking before an id exists.
type Draft struct {
	Phone       string
	Purpose     string
	AmountCents int64
	Currency    string
	ArtistID    *int64
}

// Normalize returns a copy with phone normalized and currency defaulted.
func (d Draft) Normalize() Draft {
	d.Phone = NormalizePhone(d.Phone)
	if d.Currency == "" {
		d.Currency = domain.CurrencyMYR
	}
	return d
}

// Validate checks the draft without allocating anything.
func (d Draft) Validate() error {
	phone := NormalizePhone(d.Phone)
	if len(phone) < minPhoneDigits {
		return domain.NewValidationError("phone must contain at least 6 digits")
	}
	if len(phone) > maxPhoneLength {
		return domain.NewValidationError("phone is too long")
	}
	if d.AmountCents < 0 {
		return domain.NewValidationError("amount must not be negative")
	}
	if len(d.Purpose) > maxPurposeLength {
		return domain.NewValidationError("purpose must be at most 1000 characters")
	}
	if d.Currency != "" && len(d.Currency) != 3 {
		return domain.NewValidationError(fmt.Sprintf("invalid currency: %s", d.Currency))
	}
	if d.ArtistID != nil && *d.ArtistID <= 0 {
		return domain.NewValidationError("artist ID must be positive")
	}
	return nil
}

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id          int64
	reference   string
	status      BookingStatus
	phone       string
	purpose     string
	amountCents int64
	currency    string
	artistID    *int64
	cancelNote  string

	confirmedAt *time.Time
	completedAt *time.Time
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a Booking with status=pending for an allocated id.
func NewBooking(id int64, draft Draft) (*Booking, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("booking ID must be positive")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	draft = draft.Normalize()

	now := time.Now().UTC()
	return &Booking{
		id:          id,
		reference:   FormatReference(id),
		status:      StatusPending,
		phone:       draft.Phone,
		purpose:     draft.Purpose,
		amountCents: draft.AmountCents,
		currency:    draft.Currency,
		artistID:    draft.ArtistID,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id int64,
	reference string,
	status BookingStatus,
	phone string,
	purpose string,
	amountCents int64,
	currency string,
	artistID *int64,
	cancelNote string,
	confirmedAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		reference:   reference,
		status:      status,
		phone:       phone,
		purpose:     purpose,
		amountCents: amountCents,
		currency:    currency,
		artistID:    artistID,
		cancelNote:  cancelNote,
		confirmedAt: confirmedAt,
		completedAt: completedAt,
		cancelledAt: cancelledAt,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() int64 { return b.id }

// Reference returns the public tracking reference.
func (b *Booking) Reference() string { return b.reference }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Phone returns the normalized contact phone.
func (b *Booking) Phone() string { return b.phone }

// Purpose returns the free-text purpose or notes.
func (b *Booking) Purpose() string { return b.purpose }

// AmountCents returns the total booking value in cents.
func (b *Booking) AmountCents() int64 { return b.amountCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// ArtistID returns the assigned artist, or nil if unassigned.
func (b *Booking) ArtistID() *int64 { return b.artistID }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// ConfirmedAt returns when payment was confirmed.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// CompletedAt returns when the booking was completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns when the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the number of writes applied to this booking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// StatusChange describes one compare-and-set status write.
// The write applies only if the stored status still equals From.
type StatusChange struct {
	BookingID  int64
	From       BookingStatus
	To         BookingStatus
	ArtistID   *int64
	CancelNote string
	At         time.Time
}

// TransitionOption adjusts a planned StatusChange.
type TransitionOption func(*StatusChange)

// WithArtist records the artist assigned by the transition.
func WithArtist(artistID int64) TransitionOption {
	return func(c *StatusChange) { c.ArtistID = &artistID }
}

// WithCancelNote records the cancellation reason.
func WithCancelNote(note string) TransitionOption {
	return func(c *StatusChange) { c.CancelNote = note }
}

// PlanTransition validates moving to target and returns the write to perform.
// The booking itself is not modified.
func (b *Booking) PlanTransition(target BookingStatus, opts ...TransitionOption) (StatusChange, error) {
	if !target.IsValid() {
		return StatusChange{}, domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", target))
	}
	if !b.status.CanTransitionTo(target) {
		return StatusChange{}, domain.NewInvalidStateError(string(b.status), string(target))
	}

	change := StatusChange{
		BookingID: b.id,
		From:      b.status,
		To:        target,
		At:        time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&change)
	}

	if change.ArtistID != nil {
		if target != StatusAwaitingPayment {
			return StatusChange{}, domain.NewValidationError("an artist can only be assigned when moving to awaiting_payment")
		}
		if *change.ArtistID <= 0 {
			return StatusChange{}, domain.NewValidationError("artist ID must be positive")
		}
	}
	if change.CancelNote != "" {
		if target != StatusCancelled {
			return StatusChange{}, domain.NewValidationError("a cancel note is only accepted when cancelling")
		}
		if len(change.CancelNote) > maxCancelNote {
			return StatusChange{}, domain.NewValidationError("cancel note must be at most 500 characters")
		}
	}
	return change, nil
}

// Apply mirrors a persisted StatusChange onto the in-memory aggregate.
func (b *Booking) Apply(change StatusChange) {
	at := change.At
	b.status = change.To
	switch change.To {
	case StatusConfirmed:
		b.confirmedAt = &at
	case StatusCompleted:
		b.completedAt = &at
	case StatusCancelled:
		b.cancelledAt = &at
		b.cancelNote = change.CancelNote
	}
	if change.ArtistID != nil {
		id := *change.ArtistID
		b.artistID = &id
	}
	b.version++
	b.updatedAt = at
}
