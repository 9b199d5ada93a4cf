package application

import (
	"time"

	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	Phone       string `json:"phone" binding:"required"`
	Purpose     string `json:"purpose"`
	AmountCents int64  `json:"amount_cents" binding:"min=0"`
	Currency    string `json:"currency"`
	ArtistID    *int64 `json:"artist_id"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID          int64      `json:"id"`
	Reference   string     `json:"reference"`
	Status      string     `json:"status"`
	Phone       string     `json:"phone"`
	Purpose     string     `json:"purpose,omitempty"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	ArtistID    *int64     `json:"artist_id,omitempty"`
	CancelNote  string     `json:"cancel_note,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TrackingDTO is what the public tracking page sees. It omits internal ids and contact data.
type TrackingDTO struct {
	Reference      string     `json:"reference"`
	Status         string     `json:"status"`
	Purpose        string     `json:"purpose,omitempty"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	ArtistAssigned bool       `json:"artist_assigned"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
	PendingCount  int64            `json:"pending_count"`
}

// PendingCountDTO feeds the dashboard notification badge.
type PendingCountDTO struct {
	PendingCount int `json:"pending_count"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:          bk.ID(),
		Reference:   bk.Reference(),
		Status:      string(bk.Status()),
		Phone:       bk.Phone(),
		Purpose:     bk.Purpose(),
		AmountCents: bk.AmountCents(),
		Currency:    bk.Currency(),
		ArtistID:    bk.ArtistID(),
		CancelNote:  bk.CancelNote(),
		ConfirmedAt: bk.ConfirmedAt(),
		CompletedAt: bk.CompletedAt(),
		CancelledAt: bk.CancelledAt(),
		Version:     bk.Version(),
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.UpdatedAt(),
	}
}

func toTrackingDTO(bk *bookingDomain.Booking) TrackingDTO {
	return TrackingDTO{
		Reference:      bk.Reference(),
		Status:         string(bk.Status()),
		Purpose:        bk.Purpose(),
		AmountCents:    bk.AmountCents(),
		Currency:       bk.Currency(),
		ArtistAssigned: bk.ArtistID() != nil,
		ConfirmedAt:    bk.ConfirmedAt(),
		CompletedAt:    bk.CompletedAt(),
		CancelledAt:    bk.CancelledAt(),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}
}
