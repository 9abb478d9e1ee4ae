package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecord tracks the quantity and valuation of one product (and optional
// variant) at one location. It is the unit of locking: every mutation happens
// under an exclusive lock on the record and must keep the balance invariant
// quantity_on_hand == quantity_available + quantity_reserved.
type StockRecord struct {
	shared.TenantAggregateRoot
	ProductID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key"`
	VariantID        *uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_stock_key"`
	LocationID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key"`
	QuantityOnHand   int64               `gorm:"not null;default:0"`
	QuantityReserved int64               `gorm:"not null;default:0"`
	ReorderPoint     int64               `gorm:"not null;default:0"`
	ReorderQuantity  int64               `gorm:"not null;default:0"`
	AverageCost      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	CostMethod       strategy.CostMethod `gorm:"type:varchar(20);not null;default:'average'"`
	LastMovementAt   *time.Time          `gorm:"type:timestamp"`
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates an empty stock record for a product at a location
func NewStockRecord(tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID, costMethod strategy.CostMethod) *StockRecord {
	if !costMethod.IsValid() {
		costMethod = strategy.CostMethodAverage
	}
	return &StockRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		VariantID:           variantID,
		LocationID:          locationID,
		QuantityOnHand:      0,
		QuantityReserved:    0,
		AverageCost:         decimal.Zero,
		CostMethod:          costMethod,
	}
}

// Available returns the quantity that can be promised to new demand
func (r *StockRecord) Available() int64 {
	return r.QuantityOnHand - r.QuantityReserved
}

// TotalValue returns on-hand quantity valued at the rolling average cost
func (r *StockRecord) TotalValue() decimal.Decimal {
	return r.AverageCost.Mul(decimal.NewFromInt(r.QuantityOnHand))
}

// Snapshot captures the current counters, taken before applying a mutation
func (r *StockRecord) Snapshot() MovementSnapshot {
	return MovementSnapshot{
		QuantityBefore: r.QuantityOnHand,
		ReservedBefore: r.QuantityReserved,
	}
}

// CheckInvariant verifies the balance invariant on the current counters
func (r *StockRecord) CheckInvariant() error {
	if r.QuantityOnHand < 0 || r.QuantityReserved < 0 {
		return shared.ErrInvariantViolation
	}
	if r.QuantityOnHand-r.QuantityReserved < 0 {
		return shared.ErrInvariantViolation
	}
	return nil
}

// ApplyDelta is the single mutation entry point for the record's counters.
// The mutation is rejected before anything changes when it would drive
// availability, reserved or on-hand quantity negative.
func (r *StockRecord) ApplyDelta(onHandDelta, reservedDelta int64) error {
	newOnHand := r.QuantityOnHand + onHandDelta
	newReserved := r.QuantityReserved + reservedDelta

	if newReserved < 0 {
		return shared.ErrInvariantViolation
	}
	if newOnHand < 0 {
		return shared.ErrInsufficientStock
	}
	if newOnHand-newReserved < 0 {
		return shared.ErrInsufficientStock
	}

	r.QuantityOnHand = newOnHand
	r.QuantityReserved = newReserved
	now := time.Now()
	r.LastMovementAt = &now
	r.UpdatedAt = now

	return r.CheckInvariant()
}

// ApplyInboundCost folds a received quantity at the given unit cost into the
// rolling average. Outbound movements never change the average.
func (r *StockRecord) ApplyInboundCost(quantity int64, unitCost decimal.Decimal) {
	if quantity <= 0 {
		return
	}
	prevQuantity := decimal.NewFromInt(r.QuantityOnHand - quantity)
	if prevQuantity.IsNegative() {
		prevQuantity = decimal.Zero
	}
	addedQuantity := decimal.NewFromInt(quantity)
	totalQuantity := prevQuantity.Add(addedQuantity)
	if totalQuantity.IsZero() {
		return
	}
	totalValue := r.AverageCost.Mul(prevQuantity).Add(unitCost.Mul(addedQuantity))
	r.AverageCost = totalValue.Div(totalQuantity).Round(4)
}

// SetReorderRule configures the low-stock threshold and suggested order size
func (r *StockRecord) SetReorderRule(reorderPoint, reorderQuantity int64) error {
	if reorderPoint < 0 || reorderQuantity < 0 {
		return shared.ErrInvalidInput
	}
	r.ReorderPoint = reorderPoint
	r.ReorderQuantity = reorderQuantity
	r.UpdatedAt = time.Now()
	return nil
}

// IsBelowReorderPoint reports whether available stock has reached the
// reorder threshold. Records without a threshold never report low.
func (r *StockRecord) IsBelowReorderPoint() bool {
	return r.ReorderPoint > 0 && r.Available() <= r.ReorderPoint
}

// MatchesKey reports whether the record identifies the given product/variant/location
func (r *StockRecord) MatchesKey(productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) bool {
	if r.ProductID != productID || r.LocationID != locationID {
		return false
	}
	if r.VariantID == nil && variantID == nil {
		return true
	}
	if r.VariantID == nil || variantID == nil {
		return false
	}
	return *r.VariantID == *variantID
}
