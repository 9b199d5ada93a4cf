package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

func newStoredBooking(t *testing.T, repo *MemoryBookingRepository) *bookingDomain.Booking {
	t.Helper()
	ctx := context.Background()
	id, err := repo.NextID(ctx)
	require.NoError(t, err)
	bk, err := bookingDomain.NewBooking(id, bookingDomain.Draft{Phone: "0123456789", AmountCents: 500})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, bk))
	return bk
}

func TestMemoryRepository_NextIDIsUniqueUnderConcurrency(t *testing.T) {
	repo := NewMemoryBookingRepository()
	const n = 200

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.NextID(context.Background())
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestMemoryRepository_SaveRejectsDuplicates(t *testing.T) {
	repo := NewMemoryBookingRepository()
	bk := newStoredBooking(t, repo)

	err := repo.Save(context.Background(), bk)
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))

	// Same reference under a different id.
	now := time.Now().UTC()
	clash := bookingDomain.ReconstructBooking(bk.ID()+100, bk.Reference(), bookingDomain.StatusPending,
		"0123456789", "", 0, "MYR", nil, "", nil, nil, nil, 1, now, now)
	err = repo.Save(context.Background(), clash)
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))
}

func TestMemoryRepository_FindByID(t *testing.T) {
	repo := NewMemoryBookingRepository()
	bk := newStoredBooking(t, repo)

	got, err := repo.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bk.Reference(), got.Reference())
	assert.Equal(t, bookingDomain.StatusPending, got.Status())

	_, err = repo.FindByID(context.Background(), 9999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemoryRepository_FindByReferenceAndPhone(t *testing.T) {
	repo := NewMemoryBookingRepository()
	bk := newStoredBooking(t, repo)
	ctx := context.Background()

	got, err := repo.FindByReferenceAndPhone(ctx, bk.Reference(), "0123456789")
	require.NoError(t, err)
	assert.Equal(t, bk.ID(), got.ID())

	_, err = repo.FindByReferenceAndPhone(ctx, bk.Reference(), "0199999999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = repo.FindByReferenceAndPhone(ctx, "BK-999999", "0123456789")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemoryRepository_UpdateStatusIsCompareAndSet(t *testing.T) {
	repo := NewMemoryBookingRepository()
	bk := newStoredBooking(t, repo)
	ctx := context.Background()

	change, err := bk.PlanTransition(bookingDomain.StatusAwaitingPayment, bookingDomain.WithArtist(5))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, change))

	// Replaying the same expectation must fail: the status is no longer pending.
	err = repo.UpdateStatus(ctx, change)
	assert.True(t, errors.Is(err, domain.ErrConstraintMismatch))

	got, err := repo.FindByID(ctx, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusAwaitingPayment, got.Status())
	require.NotNil(t, got.ArtistID())
	assert.Equal(t, int64(5), *got.ArtistID())
	assert.Equal(t, int64(2), got.Version())

	err = repo.UpdateStatus(ctx, bookingDomain.StatusChange{BookingID: 404, From: bookingDomain.StatusPending, To: bookingDomain.StatusCancelled})
	assert.True(t, errors.Is(err, domain.ErrConstraintMismatch))
}

func TestMemoryRepository_ListAndCount(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	var bookings []*bookingDomain.Booking
	for i := 0; i < 5; i++ {
		bookings = append(bookings, newStoredBooking(t, repo))
	}
	change, err := bookings[0].PlanTransition(bookingDomain.StatusCancelled)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, change))

	all, total, err := repo.List(ctx, bookingDomain.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, all, 5)

	pending, total, err := repo.List(ctx, bookingDomain.ListFilter{
		Statuses: []bookingDomain.BookingStatus{bookingDomain.StatusPending},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, pending, 4)

	page, total, err := repo.List(ctx, bookingDomain.ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	beyond, _, err := repo.List(ctx, bookingDomain.ListFilter{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"pending": 4, "cancelled": 1}, counts)
}

func TestMemoryRepository_HonoursCancelledContext(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.NextID(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}
