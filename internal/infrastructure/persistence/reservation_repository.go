package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// uniqueViolationCode is the Postgres error code for unique_violation
const uniqueViolationCode = "23505"

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by its ID
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Reservation, error) {
	var reservation inventory.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindActiveByReference finds the active reservation for a reference document
func (r *GormReservationRepository) FindActiveByReference(ctx context.Context, stockRecordID uuid.UUID, referenceType, referenceID string) (*inventory.Reservation, error) {
	var reservation inventory.Reservation
	if err := r.db.WithContext(ctx).
		Where("stock_record_id = ? AND reference_type = ? AND reference_id = ? AND status = ?",
			stockRecordID, referenceType, referenceID, inventory.ReservationStatusActive).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindActiveByRecord finds all active reservations on a stock record
func (r *GormReservationRepository) FindActiveByRecord(ctx context.Context, stockRecordID uuid.UUID) ([]inventory.Reservation, error) {
	var reservations []inventory.Reservation
	if err := r.db.WithContext(ctx).
		Where("stock_record_id = ? AND status = ?", stockRecordID, inventory.ReservationStatusActive).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindExpired finds active reservations whose deadline passed before the
// given instant, oldest deadline first, capped at limit per sweep cycle
func (r *GormReservationRepository) FindExpired(ctx context.Context, before time.Time, limit int) ([]inventory.Reservation, error) {
	var reservations []inventory.Reservation
	if err := r.db.WithContext(ctx).
		Where("status = ? AND reserved_until < ?", inventory.ReservationStatusActive, before).
		Order("reserved_until ASC").
		Limit(limit).
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// Create inserts a new reservation. A unique violation on the active
// reference index means a concurrent reserve for the same reference won the
// race, reported as ErrAlreadyExists.
func (r *GormReservationRepository) Create(ctx context.Context, reservation *inventory.Reservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates a reservation
func (r *GormReservationRepository) Save(ctx context.Context, reservation *inventory.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// Ensure GormReservationRepository implements ReservationRepository
var _ inventory.ReservationRepository = (*GormReservationRepository)(nil)
