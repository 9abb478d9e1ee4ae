package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus tracks the usability of a received lot
type LotStatus string

const (
	LotStatusActive     LotStatus = "active"
	LotStatusExpired    LotStatus = "expired"
	LotStatusQuarantine LotStatus = "quarantine"
	LotStatusDisposed   LotStatus = "disposed"
)

// String returns the string representation of the status
func (s LotStatus) String() string {
	return string(s)
}

// Lot is a received batch of stock with its own unit cost and optional
// expiry. FIFO and LIFO valuation walk lots in received-date order, consuming
// QuantityAvailable while QuantityReceived stays fixed for audit.
type Lot struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockRecordID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotNumber         string          `gorm:"type:varchar(100);not null;index"`
	QuantityReceived  int64           `gorm:"not null"`
	QuantityAvailable int64           `gorm:"not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedDate      time.Time       `gorm:"not null;index"`
	ExpiryDate        *time.Time      `gorm:"type:timestamp;index"`
	Status            LotStatus       `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "lots"
}

// NewLot creates an active lot from a receipt
func NewLot(
	tenantID, stockRecordID uuid.UUID,
	lotNumber string,
	quantity int64,
	unitCost decimal.Decimal,
	receivedDate time.Time,
	expiryDate *time.Time,
) (*Lot, error) {
	if quantity <= 0 || lotNumber == "" {
		return nil, shared.ErrInvalidInput
	}
	if unitCost.IsNegative() {
		return nil, shared.ErrInvalidInput
	}
	if receivedDate.IsZero() {
		receivedDate = time.Now()
	}
	return &Lot{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		StockRecordID:     stockRecordID,
		LotNumber:         lotNumber,
		QuantityReceived:  quantity,
		QuantityAvailable: quantity,
		UnitCost:          unitCost,
		ReceivedDate:      receivedDate,
		ExpiryDate:        expiryDate,
		Status:            LotStatusActive,
	}, nil
}

// IsExpired returns true if the lot has passed its expiry date
func (l *Lot) IsExpired(now time.Time) bool {
	return l.ExpiryDate != nil && l.ExpiryDate.Before(now)
}

// IsConsumable returns true if the lot can satisfy outbound quantity
func (l *Lot) IsConsumable() bool {
	return l.Status == LotStatusActive && l.QuantityAvailable > 0
}

// Consume deducts up to quantity from the lot and returns what was taken
func (l *Lot) Consume(quantity int64) int64 {
	if !l.IsConsumable() || quantity <= 0 {
		return 0
	}
	taken := quantity
	if taken > l.QuantityAvailable {
		taken = l.QuantityAvailable
	}
	l.QuantityAvailable -= taken
	l.UpdatedAt = time.Now()
	return taken
}

// Restore returns quantity to the lot, e.g. when a consuming unit rolled back
func (l *Lot) Restore(quantity int64) {
	if quantity <= 0 {
		return
	}
	l.QuantityAvailable += quantity
	if l.QuantityAvailable > l.QuantityReceived {
		l.QuantityAvailable = l.QuantityReceived
	}
	l.UpdatedAt = time.Now()
}

// MarkExpired flags a lot whose expiry date has passed
func (l *Lot) MarkExpired() error {
	if l.Status != LotStatusActive {
		return shared.ErrInvalidState
	}
	l.Status = LotStatusExpired
	l.UpdatedAt = time.Now()
	return nil
}

// Quarantine removes the lot from consumption pending inspection
func (l *Lot) Quarantine() error {
	if l.Status != LotStatusActive {
		return shared.ErrInvalidState
	}
	l.Status = LotStatusQuarantine
	l.UpdatedAt = time.Now()
	return nil
}

// ReleaseQuarantine returns an inspected lot to active use
func (l *Lot) ReleaseQuarantine() error {
	if l.Status != LotStatusQuarantine {
		return shared.ErrInvalidState
	}
	l.Status = LotStatusActive
	l.UpdatedAt = time.Now()
	return nil
}

// Dispose terminally writes off the lot
func (l *Lot) Dispose() error {
	if l.Status == LotStatusDisposed {
		return shared.ErrInvalidState
	}
	l.Status = LotStatusDisposed
	l.QuantityAvailable = 0
	l.UpdatedAt = time.Now()
	return nil
}

// TotalValue returns the remaining value held in the lot
func (l *Lot) TotalValue() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(l.QuantityAvailable))
}
