package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Reference   string     `gorm:"uniqueIndex:idx_bookings_reference;not null;size:22"`
	Status      string     `gorm:"not null;size:30;index:idx_bookings_status"`
	Phone       string     `gorm:"not null;size:32;index:idx_bookings_phone"`
	Purpose     string     `gorm:"not null;size:1000;default:''"`
	AmountCents int64      `gorm:"not null;check:chk_bookings_amount,amount_cents >= 0"`
	Currency    string     `gorm:"not null;size:3;default:'MYR'"`
	ArtistID    *int64     `gorm:"index:idx_bookings_artist_id"`
	CancelNote  string     `gorm:"not null;size:500;default:''"`
	ConfirmedAt *time.Time `gorm:""`
	CompletedAt *time.Time `gorm:""`
	CancelledAt *time.Time `gorm:""`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// NextID reserves the next value of the bookings id sequence. nextval is
// atomic and never hands out the same value twice, even across processes.
func (r *GormBookingRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval(pg_get_serial_sequence('bookings', 'id'))").
		Scan(&id).Error
	if err != nil {
		return 0, translateError("allocate booking id", err)
	}
	return id, nil
}

// Save persists a new booking in a single INSERT.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError("save booking", err)
	}
	return nil
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, translateError("find booking", err)
	}
	return toDomainBooking(&model)
}

// FindByReferenceAndPhone retrieves the booking matching both fields.
func (r *GormBookingRepository) FindByReferenceAndPhone(ctx context.Context, reference, phone string) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("reference = ? AND phone = ?", reference, phone).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, translateError("find booking by reference", err)
	}
	return toDomainBooking(&model)
}

// List retrieves bookings matching filter, newest first.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.ArtistID != nil {
		query = query.Where("artist_id = ?", *filter.ArtistID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError("count bookings", err)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var models []BookingModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, translateError("list bookings", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, translateError("count by status", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// UpdateStatus writes change with a compare-and-set on the current status.
// Zero rows affected means another writer moved the booking first (or it does not exist).
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, change bookingDomain.StatusChange) error {
	updates := map[string]interface{}{
		"status":     string(change.To),
		"version":    gorm.Expr("version + 1"),
		"updated_at": change.At,
	}
	switch change.To {
	case bookingDomain.StatusConfirmed:
		updates["confirmed_at"] = change.At
	case bookingDomain.StatusCompleted:
		updates["completed_at"] = change.At
	case bookingDomain.StatusCancelled:
		updates["cancelled_at"] = change.At
		updates["cancel_note"] = change.CancelNote
	}
	if change.ArtistID != nil {
		updates["artist_id"] = *change.ArtistID
	}

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", change.BookingID, string(change.From)).
		Updates(updates)
	if result.Error != nil {
		return translateError("update booking status", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConstraintMismatchError("booking status was modified by another transaction")
	}
	return nil
}

// Ping checks the database connection.
func (r *GormBookingRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.Reference,
		status,
		m.Phone,
		m.Purpose,
		m.AmountCents,
		m.Currency,
		m.ArtistID,
		m.CancelNote,
		m.ConfirmedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
