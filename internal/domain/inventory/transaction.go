package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus tracks the lifecycle of an inventory transaction
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusInProgress TransactionStatus = "in_progress"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusRolledBack TransactionStatus = "rolled_back"
)

// String returns the string representation of the status
func (s TransactionStatus) String() string {
	return string(s)
}

// IsTerminal returns true once no further transition is allowed
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusCancelled,
		TransactionStatusFailed, TransactionStatusRolledBack:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status machine allows the move
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return target == TransactionStatusInProgress || target == TransactionStatusCancelled
	case TransactionStatusInProgress:
		return target == TransactionStatusCompleted ||
			target == TransactionStatusFailed ||
			target == TransactionStatusRolledBack
	default:
		return false
	}
}

// TransactionItem is one line of a transaction: a quantity of one stock
// record processed under the transaction's movement type. QuantityBefore and
// ReservedBefore are snapshots taken when the item was added, kept for audit.
// Commit validates against live values only, so a snapshot that drifted
// between add and commit is recorded, not rejected.
type TransactionItem struct {
	shared.BaseEntity
	TransactionID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	StockRecordID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID        `gorm:"type:uuid;not null"`
	Quantity          int64            `gorm:"not null"`
	QuantityProcessed int64            `gorm:"not null;default:0"`
	UnitCost          *decimal.Decimal `gorm:"type:decimal(18,4)"`
	QuantityBefore    int64            `gorm:"not null"`
	ReservedBefore    int64            `gorm:"not null"`
	LotNumber         string           `gorm:"type:varchar(100)"`
	Completed         bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (TransactionItem) TableName() string {
	return "transaction_items"
}

// MarkProcessed records the quantity actually applied at commit
func (i *TransactionItem) MarkProcessed(quantity int64) {
	i.QuantityProcessed = quantity
	i.Completed = true
	i.UpdatedAt = time.Now()
}

// InventoryTransaction groups stock mutations into one all-or-nothing unit.
// Items are collected while pending, then commit applies every item inside a
// single database transaction or none of them.
type InventoryTransaction struct {
	shared.TenantAggregateRoot
	TransactionNumber     string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	MovementType          MovementType      `gorm:"type:varchar(20);not null;index"`
	Status                TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	SourceLocationID      *uuid.UUID        `gorm:"type:uuid"`
	DestinationLocationID *uuid.UUID        `gorm:"type:uuid"`
	ReferenceType         string            `gorm:"type:varchar(50)"`
	ReferenceID           string            `gorm:"type:varchar(100)"`
	Notes                 string            `gorm:"type:varchar(500)"`
	RollbackReason        string            `gorm:"type:varchar(500)"`
	PerformedBy           uuid.UUID         `gorm:"type:uuid;not null"`
	StartedAt             *time.Time        `gorm:"type:timestamp"`
	CompletedAt           *time.Time        `gorm:"type:timestamp"`
	CancelledAt           *time.Time        `gorm:"type:timestamp"`
	Items                 []TransactionItem `gorm:"foreignKey:TransactionID"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewTransactionNumber generates a unique, human-scannable transaction number
func NewTransactionNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("TXN-%s-%s", time.Now().Format("20060102"), suffix)
}

// NewInventoryTransaction creates a pending transaction. Transfer movement
// types require distinct source and destination locations.
func NewInventoryTransaction(
	tenantID uuid.UUID,
	movementType MovementType,
	sourceLocationID, destinationLocationID *uuid.UUID,
	performedBy uuid.UUID,
	notes string,
) (*InventoryTransaction, error) {
	if !movementType.IsValid() {
		return nil, shared.ErrInvalidInput
	}
	if movementType == MovementTypeTransferIn || movementType == MovementTypeTransferOut {
		if sourceLocationID == nil || destinationLocationID == nil {
			return nil, shared.ErrInvalidLocationPair
		}
		if *sourceLocationID == *destinationLocationID {
			return nil, shared.ErrInvalidLocationPair
		}
	}
	return &InventoryTransaction{
		TenantAggregateRoot:   shared.NewTenantAggregateRoot(tenantID),
		TransactionNumber:     NewTransactionNumber(),
		MovementType:          movementType,
		Status:                TransactionStatusPending,
		SourceLocationID:      sourceLocationID,
		DestinationLocationID: destinationLocationID,
		Notes:                 notes,
		PerformedBy:           performedBy,
		Items:                 make([]TransactionItem, 0),
	}, nil
}

// AddItem appends a line while the transaction is still pending. The record's
// current counters are captured as the item's before-snapshots.
func (t *InventoryTransaction) AddItem(record *StockRecord, quantity int64, unitCost *decimal.Decimal, lotNumber string) (*TransactionItem, error) {
	if t.Status != TransactionStatusPending {
		return nil, shared.ErrInvalidState
	}
	if quantity == 0 {
		return nil, shared.ErrInvalidInput
	}
	if t.MovementType != MovementTypeAdjustment && quantity < 0 {
		return nil, shared.ErrInvalidInput
	}
	item := TransactionItem{
		BaseEntity:     shared.NewBaseEntity(),
		TransactionID:  t.ID,
		StockRecordID:  record.ID,
		ProductID:      record.ProductID,
		Quantity:       quantity,
		UnitCost:       unitCost,
		QuantityBefore: record.QuantityOnHand,
		ReservedBefore: record.QuantityReserved,
		LotNumber:      lotNumber,
	}
	t.Items = append(t.Items, item)
	t.UpdatedAt = time.Now()
	return &t.Items[len(t.Items)-1], nil
}

// Start moves the transaction into commit processing
func (t *InventoryTransaction) Start() error {
	if !t.Status.CanTransitionTo(TransactionStatusInProgress) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	t.Status = TransactionStatusInProgress
	t.StartedAt = &now
	t.UpdatedAt = now
	return nil
}

// Complete marks a successfully committed transaction
func (t *InventoryTransaction) Complete() error {
	if !t.Status.CanTransitionTo(TransactionStatusCompleted) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	t.Status = TransactionStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.AddDomainEvent(NewTransactionCommittedEvent(t))
	return nil
}

// Fail records a commit failure after the stock mutations were rolled back
func (t *InventoryTransaction) Fail(reason string) error {
	if !t.Status.CanTransitionTo(TransactionStatusFailed) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	t.Status = TransactionStatusFailed
	t.RollbackReason = reason
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.AddDomainEvent(NewTransactionFailedEvent(t, reason))
	return nil
}

// MarkRolledBack records an explicit rollback of an in-progress transaction
func (t *InventoryTransaction) MarkRolledBack(reason string) error {
	if !t.Status.CanTransitionTo(TransactionStatusRolledBack) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	t.Status = TransactionStatusRolledBack
	t.RollbackReason = reason
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

// Cancel abandons a pending transaction before any stock was touched
func (t *InventoryTransaction) Cancel() error {
	if !t.Status.CanTransitionTo(TransactionStatusCancelled) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	t.Status = TransactionStatusCancelled
	t.CancelledAt = &now
	t.UpdatedAt = now
	return nil
}

// IsTerminal returns true when the transaction reached a final status
func (t *InventoryTransaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}
