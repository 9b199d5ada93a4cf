// Package events defines the topics, event types and payloads exchanged over Kafka.
package events

import "time"

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
)

// Payment event types.
const (
	PaymentConfirmed = "payment.confirmed"
	PaymentFailed    = "payment.failed"
	PaymentExpired   = "payment.expired"
)

// BookingCreatedEvent is published after a booking row is inserted.
type BookingCreatedEvent struct {
	BookingID   int64     `json:"booking_id"`
	Reference   string    `json:"reference"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	ArtistID    *int64    `json:"artist_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after a successful status transition.
type BookingStatusChangedEvent struct {
	BookingID  int64     `json:"booking_id"`
	Reference  string    `json:"reference"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ArtistID   *int64    `json:"artist_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentConfirmedEvent is consumed to confirm a booking awaiting payment.
type PaymentConfirmedEvent struct {
	PaymentID   string    `json:"payment_id"`
	BookingID   int64     `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentFailedEvent is consumed for both payment.failed and payment.expired.
type PaymentFailedEvent struct {
	PaymentID  string    `json:"payment_id"`
	BookingID  int64     `json:"booking_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
