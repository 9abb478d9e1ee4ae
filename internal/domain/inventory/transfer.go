package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
)

// TransferStatus tracks the lifecycle of a stock transfer
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "draft"
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusShipped   TransferStatus = "shipped"
	TransferStatusReceived  TransferStatus = "received"
	TransferStatusCancelled TransferStatus = "cancelled"
)

// String returns the string representation of the status
func (s TransferStatus) String() string {
	return string(s)
}

// TransferItem is one product line on a transfer. Received quantity may fall
// short of shipped quantity, the difference stays visible as a discrepancy.
type TransferItem struct {
	shared.BaseEntity
	TransferID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID         *uuid.UUID `gorm:"type:uuid"`
	QuantityRequested int64      `gorm:"not null"`
	QuantityShipped   int64      `gorm:"not null;default:0"`
	QuantityReceived  int64      `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (TransferItem) TableName() string {
	return "transfer_items"
}

// Discrepancy returns shipped minus received, positive for shrinkage
func (i *TransferItem) Discrepancy() int64 {
	return i.QuantityShipped - i.QuantityReceived
}

// StockTransfer moves stock between two locations through an in-transit
// stage. While shipped, the stock is on neither location's record: the
// outbound leg already removed it and the inbound leg has not yet added it.
type StockTransfer struct {
	shared.TenantAggregateRoot
	TransferNumber        string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	SourceLocationID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	DestinationLocationID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status                TransferStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes                 string         `gorm:"type:varchar(500)"`
	OutboundTransactionID *uuid.UUID     `gorm:"type:uuid"`
	InboundTransactionID  *uuid.UUID     `gorm:"type:uuid"`
	ShippedBy             *uuid.UUID     `gorm:"type:uuid"`
	ReceivedBy            *uuid.UUID     `gorm:"type:uuid"`
	ShippedAt             *time.Time     `gorm:"type:timestamp"`
	ReceivedAt            *time.Time     `gorm:"type:timestamp"`
	CancelledAt           *time.Time     `gorm:"type:timestamp"`
	Items                 []TransferItem `gorm:"foreignKey:TransferID"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewTransferNumber generates a unique transfer number
func NewTransferNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("TRF-%s-%s", time.Now().Format("20060102"), suffix)
}

// NewStockTransfer creates a draft transfer between two distinct locations
func NewStockTransfer(tenantID, sourceLocationID, destinationLocationID, createdBy uuid.UUID, notes string) (*StockTransfer, error) {
	if sourceLocationID == destinationLocationID {
		return nil, shared.ErrInvalidLocationPair
	}
	transfer := &StockTransfer{
		TenantAggregateRoot:   shared.NewTenantAggregateRoot(tenantID),
		TransferNumber:        NewTransferNumber(),
		SourceLocationID:      sourceLocationID,
		DestinationLocationID: destinationLocationID,
		Status:                TransferStatusDraft,
		Notes:                 notes,
		Items:                 make([]TransferItem, 0),
	}
	transfer.SetCreatedBy(createdBy)
	return transfer, nil
}

// AddItem appends a product line while the transfer is still a draft
func (t *StockTransfer) AddItem(productID uuid.UUID, variantID *uuid.UUID, quantity int64) error {
	if t.Status != TransferStatusDraft {
		return shared.ErrInvalidState
	}
	if quantity <= 0 {
		return shared.ErrInvalidInput
	}
	t.Items = append(t.Items, TransferItem{
		BaseEntity:        shared.NewBaseEntity(),
		TransferID:        t.ID,
		ProductID:         productID,
		VariantID:         variantID,
		QuantityRequested: quantity,
	})
	t.UpdatedAt = time.Now()
	return nil
}

// Submit moves a draft with at least one item into the pending queue
func (t *StockTransfer) Submit() error {
	if t.Status != TransferStatusDraft {
		return shared.ErrInvalidState
	}
	if len(t.Items) == 0 {
		return shared.ErrInvalidInput
	}
	t.Status = TransferStatusPending
	t.UpdatedAt = time.Now()
	return nil
}

// Ship records the committed outbound leg and puts the stock in transit.
// Shipped quantities default to the requested quantities.
func (t *StockTransfer) Ship(outboundTransactionID, shippedBy uuid.UUID) error {
	if t.Status != TransferStatusPending {
		return shared.ErrInvalidState
	}
	now := time.Now()
	for i := range t.Items {
		t.Items[i].QuantityShipped = t.Items[i].QuantityRequested
		t.Items[i].UpdatedAt = now
	}
	t.Status = TransferStatusShipped
	t.OutboundTransactionID = &outboundTransactionID
	t.ShippedBy = &shippedBy
	t.ShippedAt = &now
	t.UpdatedAt = now
	t.AddDomainEvent(NewTransferShippedEvent(t))
	return nil
}

// Receive records the committed inbound leg with the quantities actually
// received per item ID. Missing entries receive the full shipped quantity.
// Shortfalls stay recorded as discrepancies and are not corrected here.
func (t *StockTransfer) Receive(inboundTransactionID, receivedBy uuid.UUID, receivedQuantities map[uuid.UUID]int64) error {
	if t.Status != TransferStatusShipped {
		return shared.ErrInvalidState
	}
	now := time.Now()
	for i := range t.Items {
		item := &t.Items[i]
		received, ok := receivedQuantities[item.ID]
		if !ok {
			received = item.QuantityShipped
		}
		if received < 0 || received > item.QuantityShipped {
			return shared.ErrInvalidInput
		}
		item.QuantityReceived = received
		item.UpdatedAt = now
	}
	t.Status = TransferStatusReceived
	t.InboundTransactionID = &inboundTransactionID
	t.ReceivedBy = &receivedBy
	t.ReceivedAt = &now
	t.UpdatedAt = now
	t.AddDomainEvent(NewTransferReceivedEvent(t))
	return nil
}

// Cancel abandons a transfer that has not shipped yet
func (t *StockTransfer) Cancel() error {
	if t.Status != TransferStatusDraft && t.Status != TransferStatusPending {
		return shared.ErrInvalidState
	}
	now := time.Now()
	t.Status = TransferStatusCancelled
	t.CancelledAt = &now
	t.UpdatedAt = now
	return nil
}

// HasDiscrepancy returns true if any item was received short
func (t *StockTransfer) HasDiscrepancy() bool {
	for i := range t.Items {
		if t.Items[i].Discrepancy() != 0 {
			return true
		}
	}
	return false
}
