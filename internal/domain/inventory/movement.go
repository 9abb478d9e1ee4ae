package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypeInbound      MovementType = "inbound"
	MovementTypeOutbound     MovementType = "outbound"
	MovementTypeTransferIn   MovementType = "transfer_in"
	MovementTypeTransferOut  MovementType = "transfer_out"
	MovementTypeAdjustment   MovementType = "adjustment"
	MovementTypeReservation  MovementType = "reservation"
	MovementTypeRelease      MovementType = "release"
	MovementTypeAllocation   MovementType = "allocation"
	MovementTypeDeallocation MovementType = "deallocation"
)

// String returns the string representation of the movement type
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is a known value
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeInbound, MovementTypeOutbound,
		MovementTypeTransferIn, MovementTypeTransferOut,
		MovementTypeAdjustment,
		MovementTypeReservation, MovementTypeRelease,
		MovementTypeAllocation, MovementTypeDeallocation:
		return true
	default:
		return false
	}
}

// Deltas maps a quantity processed under this movement type to the pair of
// deltas applied to a stock record. Adjustment quantities are already signed,
// every other type takes a positive quantity.
func (t MovementType) Deltas(quantity int64) (onHandDelta, reservedDelta int64) {
	switch t {
	case MovementTypeInbound, MovementTypeTransferIn:
		return quantity, 0
	case MovementTypeOutbound, MovementTypeTransferOut:
		return -quantity, 0
	case MovementTypeAdjustment:
		return quantity, 0
	case MovementTypeReservation:
		return 0, quantity
	case MovementTypeRelease:
		return 0, -quantity
	case MovementTypeAllocation:
		return -quantity, -quantity
	case MovementTypeDeallocation:
		return quantity, quantity
	default:
		return 0, 0
	}
}

// AddsStock returns true if the movement type increases on-hand quantity
func (t MovementType) AddsStock() bool {
	switch t {
	case MovementTypeInbound, MovementTypeTransferIn, MovementTypeDeallocation:
		return true
	default:
		return false
	}
}

// RemovesStock returns true if the movement type decreases on-hand quantity
func (t MovementType) RemovesStock() bool {
	switch t {
	case MovementTypeOutbound, MovementTypeTransferOut, MovementTypeAllocation:
		return true
	default:
		return false
	}
}

// MovementEntry is an immutable, append-only record of a single applied stock
// mutation. Entries carry before/after snapshots so the full history for a
// record can be replayed and audited without recomputation.
type MovementEntry struct {
	shared.BaseEntity
	TenantID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	StockRecordID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_movement_record"`
	ProductID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	LocationID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	MovementType   MovementType     `gorm:"type:varchar(20);not null;index"`
	QuantityChange int64            `gorm:"not null"`
	QuantityBefore int64            `gorm:"not null"`
	QuantityAfter  int64            `gorm:"not null"`
	ReservedChange int64            `gorm:"not null;default:0"`
	ReservedBefore int64            `gorm:"not null;default:0"`
	ReservedAfter  int64            `gorm:"not null;default:0"`
	UnitCost       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	RunningValue   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ReferenceType  string           `gorm:"type:varchar(50);index:idx_movement_ref"`
	ReferenceID    string           `gorm:"type:varchar(100);index:idx_movement_ref"`
	LotNumber      string           `gorm:"type:varchar(100)"`
	Reason         string           `gorm:"type:varchar(255)"`
	PerformedBy    uuid.UUID        `gorm:"type:uuid;not null"`
	PerformedAt    time.Time        `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (MovementEntry) TableName() string {
	return "movement_entries"
}

// MovementSnapshot captures record state immediately before a mutation
type MovementSnapshot struct {
	QuantityBefore int64
	ReservedBefore int64
}

// NewMovementEntry builds the ledger entry for a mutation that was just
// applied to the given record. The before values come from the snapshot taken
// under the record's row lock, the after values from the mutated record.
func NewMovementEntry(
	record *StockRecord,
	movementType MovementType,
	onHandDelta, reservedDelta int64,
	before MovementSnapshot,
	unitCost *decimal.Decimal,
	referenceType, referenceID, lotNumber, reason string,
	performedBy uuid.UUID,
) *MovementEntry {
	return &MovementEntry{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       record.TenantID,
		StockRecordID:  record.ID,
		ProductID:      record.ProductID,
		LocationID:     record.LocationID,
		MovementType:   movementType,
		QuantityChange: onHandDelta,
		QuantityBefore: before.QuantityBefore,
		QuantityAfter:  record.QuantityOnHand,
		ReservedChange: reservedDelta,
		ReservedBefore: before.ReservedBefore,
		ReservedAfter:  record.QuantityReserved,
		UnitCost:       unitCost,
		RunningValue:   record.TotalValue(),
		ReferenceType:  referenceType,
		ReferenceID:    referenceID,
		LotNumber:      lotNumber,
		Reason:         reason,
		PerformedBy:    performedBy,
		PerformedAt:    time.Now(),
	}
}
