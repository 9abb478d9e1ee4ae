package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevelResponse represents a stock record in API responses
type StockLevelResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	VariantID         *uuid.UUID      `json:"variant_id,omitempty"`
	LocationID        uuid.UUID       `json:"location_id"`
	QuantityOnHand    int64           `json:"quantity_on_hand"`
	QuantityReserved  int64           `json:"quantity_reserved"`
	QuantityAvailable int64           `json:"quantity_available"`
	ReorderPoint      int64           `json:"reorder_point"`
	ReorderQuantity   int64           `json:"reorder_quantity"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	TotalValue        decimal.Decimal `json:"total_value"`
	CostMethod        string          `json:"cost_method"`
	IsBelowReorder    bool            `json:"is_below_reorder_point"`
	LastMovementAt    *time.Time      `json:"last_movement_at,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewStockLevelResponse maps a stock record to its API representation
func NewStockLevelResponse(record *inventory.StockRecord) *StockLevelResponse {
	return &StockLevelResponse{
		ID:                record.ID,
		TenantID:          record.TenantID,
		ProductID:         record.ProductID,
		VariantID:         record.VariantID,
		LocationID:        record.LocationID,
		QuantityOnHand:    record.QuantityOnHand,
		QuantityReserved:  record.QuantityReserved,
		QuantityAvailable: record.Available(),
		ReorderPoint:      record.ReorderPoint,
		ReorderQuantity:   record.ReorderQuantity,
		AverageCost:       record.AverageCost,
		TotalValue:        record.TotalValue(),
		CostMethod:        record.CostMethod.String(),
		IsBelowReorder:    record.IsBelowReorderPoint(),
		LastMovementAt:    record.LastMovementAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

// ReserveStockRequest represents a request to reserve stock
type ReserveStockRequest struct {
	ProductID     uuid.UUID  `json:"product_id" binding:"required"`
	VariantID     *uuid.UUID `json:"variant_id"`
	LocationID    uuid.UUID  `json:"location_id" binding:"required"`
	Quantity      int64      `json:"quantity" binding:"required,gt=0"`
	ReferenceType string     `json:"reference_type" binding:"required"`
	ReferenceID   string     `json:"reference_id" binding:"required"`
	ReservedUntil *time.Time `json:"reserved_until"`
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID            uuid.UUID `json:"id"`
	StockRecordID uuid.UUID `json:"stock_record_id"`
	Quantity      int64     `json:"quantity"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
	Status        string    `json:"status"`
	ReservedUntil time.Time `json:"reserved_until"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewReservationResponse maps a reservation to its API representation
func NewReservationResponse(res *inventory.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:            res.ID,
		StockRecordID: res.StockRecordID,
		Quantity:      res.Quantity,
		ReferenceType: res.ReferenceType,
		ReferenceID:   res.ReferenceID,
		Status:        res.Status.String(),
		ReservedUntil: res.ReservedUntil,
		CreatedAt:     res.CreatedAt,
	}
}

// ReleaseReservationResponse reports the outcome of a release call
type ReleaseReservationResponse struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Released      bool      `json:"released"`
	Status        string    `json:"status"`
}

// StartTransactionRequest represents a request to open a transaction
type StartTransactionRequest struct {
	MovementType          string     `json:"movement_type" binding:"required"`
	SourceLocationID      *uuid.UUID `json:"source_location_id"`
	DestinationLocationID *uuid.UUID `json:"destination_location_id"`
	ReferenceType         string     `json:"reference_type"`
	ReferenceID           string     `json:"reference_id"`
	Notes                 string     `json:"notes"`
}

// AddTransactionItemRequest represents a request to add a line to a pending transaction
type AddTransactionItemRequest struct {
	ProductID  uuid.UUID        `json:"product_id" binding:"required"`
	VariantID  *uuid.UUID       `json:"variant_id"`
	LocationID uuid.UUID        `json:"location_id" binding:"required"`
	Quantity   int64            `json:"quantity" binding:"required"`
	UnitCost   *decimal.Decimal `json:"unit_cost"`
	LotNumber  string           `json:"lot_number"`
}

// TransactionItemResponse represents a transaction line in API responses
type TransactionItemResponse struct {
	ID                uuid.UUID        `json:"id"`
	StockRecordID     uuid.UUID        `json:"stock_record_id"`
	ProductID         uuid.UUID        `json:"product_id"`
	Quantity          int64            `json:"quantity"`
	QuantityProcessed int64            `json:"quantity_processed"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	QuantityBefore    int64            `json:"quantity_before"`
	ReservedBefore    int64            `json:"reserved_before"`
	LotNumber         string           `json:"lot_number,omitempty"`
	Completed         bool             `json:"completed"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                    uuid.UUID                 `json:"id"`
	TransactionNumber     string                    `json:"transaction_number"`
	MovementType          string                    `json:"movement_type"`
	Status                string                    `json:"status"`
	SourceLocationID      *uuid.UUID                `json:"source_location_id,omitempty"`
	DestinationLocationID *uuid.UUID                `json:"destination_location_id,omitempty"`
	ReferenceType         string                    `json:"reference_type,omitempty"`
	ReferenceID           string                    `json:"reference_id,omitempty"`
	Notes                 string                    `json:"notes,omitempty"`
	RollbackReason        string                    `json:"rollback_reason,omitempty"`
	PerformedBy           uuid.UUID                 `json:"performed_by"`
	StartedAt             *time.Time                `json:"started_at,omitempty"`
	CompletedAt           *time.Time                `json:"completed_at,omitempty"`
	CancelledAt           *time.Time                `json:"cancelled_at,omitempty"`
	Items                 []TransactionItemResponse `json:"items"`
	CreatedAt             time.Time                 `json:"created_at"`
}

// NewTransactionResponse maps a transaction to its API representation
func NewTransactionResponse(tx *inventory.InventoryTransaction) *TransactionResponse {
	items := make([]TransactionItemResponse, 0, len(tx.Items))
	for i := range tx.Items {
		item := &tx.Items[i]
		items = append(items, TransactionItemResponse{
			ID:                item.ID,
			StockRecordID:     item.StockRecordID,
			ProductID:         item.ProductID,
			Quantity:          item.Quantity,
			QuantityProcessed: item.QuantityProcessed,
			UnitCost:          item.UnitCost,
			QuantityBefore:    item.QuantityBefore,
			ReservedBefore:    item.ReservedBefore,
			LotNumber:         item.LotNumber,
			Completed:         item.Completed,
		})
	}
	return &TransactionResponse{
		ID:                    tx.ID,
		TransactionNumber:     tx.TransactionNumber,
		MovementType:          tx.MovementType.String(),
		Status:                tx.Status.String(),
		SourceLocationID:      tx.SourceLocationID,
		DestinationLocationID: tx.DestinationLocationID,
		ReferenceType:         tx.ReferenceType,
		ReferenceID:           tx.ReferenceID,
		Notes:                 tx.Notes,
		RollbackReason:        tx.RollbackReason,
		PerformedBy:           tx.PerformedBy,
		StartedAt:             tx.StartedAt,
		CompletedAt:           tx.CompletedAt,
		CancelledAt:           tx.CancelledAt,
		Items:                 items,
		CreatedAt:             tx.CreatedAt,
	}
}

// ReceiveLotRequest represents a request to receive stock into a lot
type ReceiveLotRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	VariantID    *uuid.UUID      `json:"variant_id"`
	LocationID   uuid.UUID       `json:"location_id" binding:"required"`
	LotNumber    string          `json:"lot_number" binding:"required"`
	Quantity     int64           `json:"quantity" binding:"required,gt=0"`
	UnitCost     decimal.Decimal `json:"unit_cost" binding:"required"`
	ReceivedDate *time.Time      `json:"received_date"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	ReferenceID  string          `json:"reference_id"`
}

// LotResponse represents a lot in API responses
type LotResponse struct {
	ID                uuid.UUID       `json:"id"`
	StockRecordID     uuid.UUID       `json:"stock_record_id"`
	LotNumber         string          `json:"lot_number"`
	QuantityReceived  int64           `json:"quantity_received"`
	QuantityAvailable int64           `json:"quantity_available"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ReceivedDate      time.Time       `json:"received_date"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	Status            string          `json:"status"`
}

// NewLotResponse maps a lot to its API representation
func NewLotResponse(lot *inventory.Lot) *LotResponse {
	return &LotResponse{
		ID:                lot.ID,
		StockRecordID:     lot.StockRecordID,
		LotNumber:         lot.LotNumber,
		QuantityReceived:  lot.QuantityReceived,
		QuantityAvailable: lot.QuantityAvailable,
		UnitCost:          lot.UnitCost,
		ReceivedDate:      lot.ReceivedDate,
		ExpiryDate:        lot.ExpiryDate,
		Status:            lot.Status.String(),
	}
}

// MovementEntryResponse represents a ledger entry in API responses
type MovementEntryResponse struct {
	ID             uuid.UUID        `json:"id"`
	StockRecordID  uuid.UUID        `json:"stock_record_id"`
	MovementType   string           `json:"movement_type"`
	QuantityChange int64            `json:"quantity_change"`
	QuantityBefore int64            `json:"quantity_before"`
	QuantityAfter  int64            `json:"quantity_after"`
	ReservedChange int64            `json:"reserved_change"`
	ReservedBefore int64            `json:"reserved_before"`
	ReservedAfter  int64            `json:"reserved_after"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	RunningValue   decimal.Decimal  `json:"running_value"`
	ReferenceType  string           `json:"reference_type,omitempty"`
	ReferenceID    string           `json:"reference_id,omitempty"`
	LotNumber      string           `json:"lot_number,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	PerformedBy    uuid.UUID        `json:"performed_by"`
	PerformedAt    time.Time        `json:"performed_at"`
}

// NewMovementEntryResponse maps a ledger entry to its API representation
func NewMovementEntryResponse(entry *inventory.MovementEntry) *MovementEntryResponse {
	return &MovementEntryResponse{
		ID:             entry.ID,
		StockRecordID:  entry.StockRecordID,
		MovementType:   entry.MovementType.String(),
		QuantityChange: entry.QuantityChange,
		QuantityBefore: entry.QuantityBefore,
		QuantityAfter:  entry.QuantityAfter,
		ReservedChange: entry.ReservedChange,
		ReservedBefore: entry.ReservedBefore,
		ReservedAfter:  entry.ReservedAfter,
		UnitCost:       entry.UnitCost,
		RunningValue:   entry.RunningValue,
		ReferenceType:  entry.ReferenceType,
		ReferenceID:    entry.ReferenceID,
		LotNumber:      entry.LotNumber,
		Reason:         entry.Reason,
		PerformedBy:    entry.PerformedBy,
		PerformedAt:    entry.PerformedAt,
	}
}

// CreateTransferRequest represents a request to create a transfer
type CreateTransferRequest struct {
	SourceLocationID      uuid.UUID             `json:"source_location_id" binding:"required"`
	DestinationLocationID uuid.UUID             `json:"destination_location_id" binding:"required"`
	Notes                 string                `json:"notes"`
	Items                 []TransferItemRequest `json:"items" binding:"required,min=1,dive"`
}

// TransferItemRequest represents one product line on a transfer request
type TransferItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int64      `json:"quantity" binding:"required,gt=0"`
}

// ReceiveTransferRequest represents received quantities keyed by transfer item ID
type ReceiveTransferRequest struct {
	ReceivedQuantities map[uuid.UUID]int64 `json:"received_quantities"`
}

// TransferItemResponse represents a transfer line in API responses
type TransferItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	VariantID         *uuid.UUID `json:"variant_id,omitempty"`
	QuantityRequested int64      `json:"quantity_requested"`
	QuantityShipped   int64      `json:"quantity_shipped"`
	QuantityReceived  int64      `json:"quantity_received"`
	Discrepancy       int64      `json:"discrepancy"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID                    uuid.UUID              `json:"id"`
	TransferNumber        string                 `json:"transfer_number"`
	SourceLocationID      uuid.UUID              `json:"source_location_id"`
	DestinationLocationID uuid.UUID              `json:"destination_location_id"`
	Status                string                 `json:"status"`
	Notes                 string                 `json:"notes,omitempty"`
	OutboundTransactionID *uuid.UUID             `json:"outbound_transaction_id,omitempty"`
	InboundTransactionID  *uuid.UUID             `json:"inbound_transaction_id,omitempty"`
	ShippedAt             *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt            *time.Time             `json:"received_at,omitempty"`
	HasDiscrepancy        bool                   `json:"has_discrepancy"`
	Items                 []TransferItemResponse `json:"items"`
	CreatedAt             time.Time              `json:"created_at"`
}

// NewTransferResponse maps a transfer to its API representation
func NewTransferResponse(transfer *inventory.StockTransfer) *TransferResponse {
	items := make([]TransferItemResponse, 0, len(transfer.Items))
	for i := range transfer.Items {
		item := &transfer.Items[i]
		items = append(items, TransferItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			VariantID:         item.VariantID,
			QuantityRequested: item.QuantityRequested,
			QuantityShipped:   item.QuantityShipped,
			QuantityReceived:  item.QuantityReceived,
			Discrepancy:       item.Discrepancy(),
		})
	}
	return &TransferResponse{
		ID:                    transfer.ID,
		TransferNumber:        transfer.TransferNumber,
		SourceLocationID:      transfer.SourceLocationID,
		DestinationLocationID: transfer.DestinationLocationID,
		Status:                transfer.Status.String(),
		Notes:                 transfer.Notes,
		OutboundTransactionID: transfer.OutboundTransactionID,
		InboundTransactionID:  transfer.InboundTransactionID,
		ShippedAt:             transfer.ShippedAt,
		ReceivedAt:            transfer.ReceivedAt,
		HasDiscrepancy:        transfer.HasDiscrepancy(),
		Items:                 items,
		CreatedAt:             transfer.CreatedAt,
	}
}

// SetReorderRuleRequest represents a request to configure a reorder rule
// BulkStockLevelsRequest asks for the stock levels of several products in
// one call, optionally narrowed to a single location
type BulkStockLevelsRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1"`
	LocationID *uuid.UUID  `json:"location_id"`
}

type SetReorderRuleRequest struct {
	ProductID       uuid.UUID  `json:"product_id" binding:"required"`
	VariantID       *uuid.UUID `json:"variant_id"`
	LocationID      uuid.UUID  `json:"location_id" binding:"required"`
	ReorderPoint    int64      `json:"reorder_point" binding:"min=0"`
	ReorderQuantity int64      `json:"reorder_quantity" binding:"min=0"`
}
