package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultReservationTTL is applied when a caller does not supply an expiry
const DefaultReservationTTL = 24 * time.Hour

// ReservationStatus tracks the lifecycle of a reservation
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusExpired   ReservationStatus = "expired"
	ReservationStatusReleased  ReservationStatus = "released"
	ReservationStatusAllocated ReservationStatus = "allocated"
)

// String returns the string representation of the status
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusActive, ReservationStatusExpired,
		ReservationStatusReleased, ReservationStatusAllocated:
		return true
	default:
		return false
	}
}

// Reservation holds a quantity of a stock record against a reference document
// (order, cart, transfer). An active reservation counts into the record's
// reserved quantity and is returned to availability on release or expiry.
type Reservation struct {
	shared.BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Uniqueness of (stock_record_id, reference_type, reference_id) holds for
	// active reservations only; the partial index lives in the migration
	// because struct tags cannot express the status predicate.
	StockRecordID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_reservation_lookup"`
	Quantity      int64     `gorm:"not null"`
	ReferenceType string    `gorm:"type:varchar(50);not null;index:idx_reservation_lookup"`
	ReferenceID   string    `gorm:"type:varchar(100);not null;index:idx_reservation_lookup"`
	Status        ReservationStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	ReservedUntil time.Time         `gorm:"not null;index"`
	ReleasedAt    *time.Time        `gorm:"type:timestamp"`
	AllocatedAt   *time.Time        `gorm:"type:timestamp"`
	CreatedBy     uuid.UUID         `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

// NewReservation creates an active reservation. A zero reservedUntil gets the
// default TTL.
func NewReservation(
	tenantID, stockRecordID uuid.UUID,
	quantity int64,
	referenceType, referenceID string,
	reservedUntil time.Time,
	createdBy uuid.UUID,
) (*Reservation, error) {
	if quantity <= 0 {
		return nil, shared.ErrInvalidInput
	}
	if referenceType == "" || referenceID == "" {
		return nil, shared.ErrInvalidInput
	}
	if reservedUntil.IsZero() {
		reservedUntil = time.Now().Add(DefaultReservationTTL)
	}
	return &Reservation{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		StockRecordID: stockRecordID,
		Quantity:      quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Status:        ReservationStatusActive,
		ReservedUntil: reservedUntil,
		CreatedBy:     createdBy,
	}, nil
}

// IsActive returns true while the reservation still holds stock
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}

// IsExpired returns true if an active reservation has passed its deadline
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.IsActive() && now.After(r.ReservedUntil)
}

// Release returns the held quantity to availability. Only active
// reservations can be released, anything else is a terminal state.
func (r *Reservation) Release() error {
	if !r.IsActive() {
		return shared.ErrInvalidState
	}
	now := time.Now()
	r.Status = ReservationStatusReleased
	r.ReleasedAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkExpired transitions an active reservation to expired. The held
// quantity is returned to availability by the caller in the same unit.
func (r *Reservation) MarkExpired() error {
	if !r.IsActive() {
		return shared.ErrInvalidState
	}
	now := time.Now()
	r.Status = ReservationStatusExpired
	r.ReleasedAt = &now
	r.UpdatedAt = now
	return nil
}

// Allocate marks the reservation as consumed by a committed outbound
// movement. Counters are untouched here, the consuming transaction applies
// the paired on-hand and reserved decrements.
func (r *Reservation) Allocate() error {
	if !r.IsActive() {
		return shared.ErrInvalidState
	}
	now := time.Now()
	r.Status = ReservationStatusAllocated
	r.AllocatedAt = &now
	r.UpdatedAt = now
	return nil
}
