package application

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	"github.com/stagehand-bookings/service-booking/pkg/domain"
	"github.com/stagehand-bookings/service-booking/pkg/events"
	"github.com/stagehand-bookings/service-booking/pkg/kafka"
)

const eventSource = "service-booking"

// EventPublisher publishes CloudEvents. *kafka.Producer and *kafka.NopProducer satisfy it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Options tunes the retry bounds of the booking core.
type Options struct {
	AllocationAttempts int
	TransitionAttempts int
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	allocator *ReferenceAllocator
	lifecycle *LifecycleEngine
	tracking  *TrackingLookup
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	publisher EventPublisher,
	opts Options,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		allocator: NewReferenceAllocator(repo, opts.AllocationAttempts, logger),
		lifecycle: NewLifecycleEngine(repo, opts.TransitionAttempts, logger),
		tracking:  NewTrackingLookup(repo),
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking allocates an id and inserts a pending booking.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	draft := bookingDomain.Draft{
		Phone:       req.Phone,
		Purpose:     req.Purpose,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		ArtistID:    req.ArtistID,
	}
	// Reject bad input before an id is spent on it.
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	bk, err := s.allocator.Create(ctx, func(id int64) (*bookingDomain.Booking, error) {
		return bookingDomain.NewBooking(id, draft)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", bk.ID()),
		zap.String("reference", bk.Reference()),
	)

	evt := events.BookingCreatedEvent{
		BookingID:   bk.ID(),
		Reference:   bk.Reference(),
		Status:      string(bk.Status()),
		AmountCents: bk.AmountCents(),
		Currency:    bk.Currency(),
		ArtistID:    bk.ArtistID(),
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, asStoreError("load booking", err)
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// Transition moves a booking to an arbitrary target status through the lifecycle engine.
func (s *BookingService) Transition(ctx context.Context, bookingID int64, target string) (*BookingDTO, error) {
	status, err := bookingDomain.ParseBookingStatus(target)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	return s.transition(ctx, bookingID, status, "")
}

// AssignArtist attaches an artist and moves the booking to awaiting_payment.
func (s *BookingService) AssignArtist(ctx context.Context, bookingID, artistID int64) (*BookingDTO, error) {
	if artistID <= 0 {
		return nil, domain.NewValidationError("artist ID must be positive")
	}
	return s.transition(ctx, bookingID, bookingDomain.StatusAwaitingPayment, "", bookingDomain.WithArtist(artistID))
}

// ConfirmPayment marks a booking awaiting payment as confirmed.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID int64) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, bookingDomain.StatusConfirmed, "")
}

// CompleteBooking finalizes a confirmed booking.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID int64) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, bookingDomain.StatusCompleted, "")
}

// CancelBooking cancels a booking that is still pending or awaiting payment.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, reason string) (*BookingDTO, error) {
	var opts []bookingDomain.TransitionOption
	if reason != "" {
		opts = append(opts, bookingDomain.WithCancelNote(reason))
	}
	return s.transition(ctx, bookingID, bookingDomain.StatusCancelled, reason, opts...)
}

func (s *BookingService) transition(
	ctx context.Context,
	bookingID int64,
	target bookingDomain.BookingStatus,
	reason string,
	opts ...bookingDomain.TransitionOption,
) (*BookingDTO, error) {
	res, err := s.lifecycle.Transition(ctx, bookingID, target, opts...)
	if err != nil {
		return nil, err
	}

	bk := res.Booking
	evt := events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		From:       string(res.From),
		To:         string(res.To),
		ArtistID:   bk.ArtistID(),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, bk.ID(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// TrackBooking serves the public tracking lookup.
func (s *BookingService) TrackBooking(ctx context.Context, reference, phone string) (*TrackingDTO, error) {
	bk, err := s.tracking.Find(ctx, reference, phone)
	if err != nil {
		return nil, err
	}
	result := toTrackingDTO(bk)
	return &result, nil
}

// --- Admin methods ---

// ListBookings returns a page of bookings, optionally filtered by status (admin).
func (s *BookingService) ListBookings(ctx context.Context, statuses []string, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	filter := bookingDomain.ListFilter{Page: page, Limit: limit}
	for _, raw := range statuses {
		status, err := bookingDomain.ParseBookingStatus(raw)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, asStoreError("list bookings", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, asStoreError("count bookings", err)
	}

	var total, pending int64
	for status, c := range counts {
		total += c
		if bookingDomain.BookingStatus(status).RequiresAttention() {
			pending += c
		}
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
		PendingCount:  pending,
	}, nil
}

// PendingCount reads a fresh snapshot of bookings needing attention and counts them.
func (s *BookingService) PendingCount(ctx context.Context) (*PendingCountDTO, error) {
	snapshot, _, err := s.repo.List(ctx, bookingDomain.ListFilter{
		Statuses: bookingDomain.AttentionStatuses(),
	})
	if err != nil {
		return nil, asStoreError("list pending bookings", err)
	}
	return &PendingCountDTO{PendingCount: bookingDomain.PendingCount(snapshot)}, nil
}

// --- Helpers ---

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, bookingID int64, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = strconv.FormatInt(bookingID, 10)

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Int64("booking_id", bookingID),
			zap.Error(err),
		)
	}
}

