package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stagehand-bookings/service-booking/internal/application"
	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	"github.com/stagehand-bookings/service-booking/internal/repository"
	"github.com/stagehand-bookings/service-booking/pkg/kafka"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newMemoryService(t *testing.T) (*application.BookingService, *repository.MemoryBookingRepository, *recordingPublisher) {
	t.Helper()
	repo := repository.NewMemoryBookingRepository()
	pub := &recordingPublisher{}
	svc := application.NewBookingService(repo, pub, application.Options{}, zap.NewNop())
	return svc, repo, pub
}

func createBooking(t *testing.T, svc *application.BookingService) *application.BookingDTO {
	t.Helper()
	bk, err := svc.CreateBooking(context.Background(), application.CreateBookingRequest{
		Phone:       "+60 12-345 6789",
		Purpose:     "bridal henna",
		AmountCents: 150000,
	})
	require.NoError(t, err)
	return bk
}

// bookingIn creates a booking and drives it to status through legal edges.
func bookingIn(t *testing.T, svc *application.BookingService, status bookingDomain.BookingStatus) int64 {
	t.Helper()
	ctx := context.Background()
	id := createBooking(t, svc).ID

	var err error
	switch status {
	case bookingDomain.StatusPending:
	case bookingDomain.StatusAwaitingPayment:
		_, err = svc.AssignArtist(ctx, id, 7)
	case bookingDomain.StatusConfirmed:
		_, err = svc.AssignArtist(ctx, id, 7)
		if err == nil {
			_, err = svc.ConfirmPayment(ctx, id)
		}
	case bookingDomain.StatusCompleted:
		_, err = svc.AssignArtist(ctx, id, 7)
		if err == nil {
			_, err = svc.ConfirmPayment(ctx, id)
		}
		if err == nil {
			_, err = svc.CompleteBooking(ctx, id)
		}
	case bookingDomain.StatusCancelled:
		_, err = svc.CancelBooking(ctx, id, "")
	default:
		err = errors.New("unsupported status " + string(status))
	}
	require.NoError(t, err)
	return id
}

func storedBooking(id int64, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	now := time.Now().UTC()
	return bookingDomain.ReconstructBooking(id, bookingDomain.FormatReference(id), status,
		"0123456789", "", 1000, "MYR", nil, "", nil, nil, nil, 1, now, now)
}
