package inventory

import (
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeStockRecord          = "StockRecord"
	AggregateTypeInventoryTransaction = "InventoryTransaction"
	AggregateTypeStockTransfer        = "StockTransfer"
)

// Event type constants
const (
	EventTypeStockReserved          = "StockReserved"
	EventTypeReservationReleased    = "ReservationReleased"
	EventTypeReservationExpired     = "ReservationExpired"
	EventTypeReservationAllocated   = "ReservationAllocated"
	EventTypeTransactionCommitted   = "TransactionCommitted"
	EventTypeTransactionFailed      = "TransactionFailed"
	EventTypeStockBelowReorderPoint = "StockBelowReorderPoint"
	EventTypeTransferShipped        = "TransferShipped"
	EventTypeTransferReceived       = "TransferReceived"
)

// StockReservedEvent is raised when a reservation takes hold of stock
type StockReservedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	ProductID     uuid.UUID `json:"product_id"`
	LocationID    uuid.UUID `json:"location_id"`
	Quantity      int64     `json:"quantity"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(record *StockRecord, reservation *Reservation) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockRecord, record.ID, record.TenantID),
		StockRecordID:   record.ID,
		ReservationID:   reservation.ID,
		ProductID:       record.ProductID,
		LocationID:      record.LocationID,
		Quantity:        reservation.Quantity,
		ReferenceType:   reservation.ReferenceType,
		ReferenceID:     reservation.ReferenceID,
	}
}

// EventType returns the event type name
func (e *StockReservedEvent) EventType() string {
	return EventTypeStockReserved
}

// ReservationReleasedEvent is raised when a reservation returns stock to availability
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Quantity      int64     `json:"quantity"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
}

// NewReservationReleasedEvent creates a new ReservationReleasedEvent
func NewReservationReleasedEvent(record *StockRecord, reservation *Reservation) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, AggregateTypeStockRecord, record.ID, record.TenantID),
		StockRecordID:   record.ID,
		ReservationID:   reservation.ID,
		Quantity:        reservation.Quantity,
		ReferenceType:   reservation.ReferenceType,
		ReferenceID:     reservation.ReferenceID,
	}
}

// EventType returns the event type name
func (e *ReservationReleasedEvent) EventType() string {
	return EventTypeReservationReleased
}

// ReservationExpiredEvent is raised when the expiry sweep reclaims a reservation
type ReservationExpiredEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Quantity      int64     `json:"quantity"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
}

// NewReservationExpiredEvent creates a new ReservationExpiredEvent
func NewReservationExpiredEvent(record *StockRecord, reservation *Reservation) *ReservationExpiredEvent {
	return &ReservationExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationExpired, AggregateTypeStockRecord, record.ID, record.TenantID),
		StockRecordID:   record.ID,
		ReservationID:   reservation.ID,
		Quantity:        reservation.Quantity,
		ReferenceType:   reservation.ReferenceType,
		ReferenceID:     reservation.ReferenceID,
	}
}

// EventType returns the event type name
func (e *ReservationExpiredEvent) EventType() string {
	return EventTypeReservationExpired
}

// ReservationAllocatedEvent is raised when a reservation is consumed by fulfillment
type ReservationAllocatedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Quantity      int64     `json:"quantity"`
}

// NewReservationAllocatedEvent creates a new ReservationAllocatedEvent
func NewReservationAllocatedEvent(tenantID uuid.UUID, reservation *Reservation) *ReservationAllocatedEvent {
	return &ReservationAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationAllocated, AggregateTypeStockRecord, reservation.StockRecordID, tenantID),
		StockRecordID:   reservation.StockRecordID,
		ReservationID:   reservation.ID,
		Quantity:        reservation.Quantity,
	}
}

// EventType returns the event type name
func (e *ReservationAllocatedEvent) EventType() string {
	return EventTypeReservationAllocated
}

// TransactionCommittedEvent is raised when a transaction commits all items
type TransactionCommittedEvent struct {
	shared.BaseDomainEvent
	TransactionID     uuid.UUID    `json:"transaction_id"`
	TransactionNumber string       `json:"transaction_number"`
	MovementType      MovementType `json:"movement_type"`
	ItemCount         int          `json:"item_count"`
}

// NewTransactionCommittedEvent creates a new TransactionCommittedEvent
func NewTransactionCommittedEvent(tx *InventoryTransaction) *TransactionCommittedEvent {
	return &TransactionCommittedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransactionCommitted, AggregateTypeInventoryTransaction, tx.ID, tx.TenantID),
		TransactionID:     tx.ID,
		TransactionNumber: tx.TransactionNumber,
		MovementType:      tx.MovementType,
		ItemCount:         len(tx.Items),
	}
}

// EventType returns the event type name
func (e *TransactionCommittedEvent) EventType() string {
	return EventTypeTransactionCommitted
}

// TransactionFailedEvent is raised when a commit was rolled back
type TransactionFailedEvent struct {
	shared.BaseDomainEvent
	TransactionID     uuid.UUID `json:"transaction_id"`
	TransactionNumber string    `json:"transaction_number"`
	Reason            string    `json:"reason"`
}

// NewTransactionFailedEvent creates a new TransactionFailedEvent
func NewTransactionFailedEvent(tx *InventoryTransaction, reason string) *TransactionFailedEvent {
	return &TransactionFailedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransactionFailed, AggregateTypeInventoryTransaction, tx.ID, tx.TenantID),
		TransactionID:     tx.ID,
		TransactionNumber: tx.TransactionNumber,
		Reason:            reason,
	}
}

// EventType returns the event type name
func (e *TransactionFailedEvent) EventType() string {
	return EventTypeTransactionFailed
}

// StockBelowReorderPointEvent is raised when a committed mutation drops
// available stock to or under the reorder point
type StockBelowReorderPointEvent struct {
	shared.BaseDomainEvent
	StockRecordID     uuid.UUID `json:"stock_record_id"`
	ProductID         uuid.UUID `json:"product_id"`
	LocationID        uuid.UUID `json:"location_id"`
	QuantityAvailable int64     `json:"quantity_available"`
	ReorderPoint      int64     `json:"reorder_point"`
	ReorderQuantity   int64     `json:"reorder_quantity"`
}

// NewStockBelowReorderPointEvent creates a new StockBelowReorderPointEvent
func NewStockBelowReorderPointEvent(record *StockRecord) *StockBelowReorderPointEvent {
	return &StockBelowReorderPointEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockBelowReorderPoint, AggregateTypeStockRecord, record.ID, record.TenantID),
		StockRecordID:     record.ID,
		ProductID:         record.ProductID,
		LocationID:        record.LocationID,
		QuantityAvailable: record.Available(),
		ReorderPoint:      record.ReorderPoint,
		ReorderQuantity:   record.ReorderQuantity,
	}
}

// EventType returns the event type name
func (e *StockBelowReorderPointEvent) EventType() string {
	return EventTypeStockBelowReorderPoint
}

// TransferShippedEvent is raised when a transfer's outbound leg commits
type TransferShippedEvent struct {
	shared.BaseDomainEvent
	TransferID            uuid.UUID `json:"transfer_id"`
	TransferNumber        string    `json:"transfer_number"`
	SourceLocationID      uuid.UUID `json:"source_location_id"`
	DestinationLocationID uuid.UUID `json:"destination_location_id"`
}

// NewTransferShippedEvent creates a new TransferShippedEvent
func NewTransferShippedEvent(t *StockTransfer) *TransferShippedEvent {
	return &TransferShippedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeTransferShipped, AggregateTypeStockTransfer, t.ID, t.TenantID),
		TransferID:            t.ID,
		TransferNumber:        t.TransferNumber,
		SourceLocationID:      t.SourceLocationID,
		DestinationLocationID: t.DestinationLocationID,
	}
}

// EventType returns the event type name
func (e *TransferShippedEvent) EventType() string {
	return EventTypeTransferShipped
}

// TransferReceivedEvent is raised when a transfer's inbound leg commits
type TransferReceivedEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID `json:"transfer_id"`
	TransferNumber string    `json:"transfer_number"`
	HasDiscrepancy bool      `json:"has_discrepancy"`
}

// NewTransferReceivedEvent creates a new TransferReceivedEvent
func NewTransferReceivedEvent(t *StockTransfer) *TransferReceivedEvent {
	return &TransferReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferReceived, AggregateTypeStockTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		TransferNumber:  t.TransferNumber,
		HasDiscrepancy:  t.HasDiscrepancy(),
	}
}

// EventType returns the event type name
func (e *TransferReceivedEvent) EventType() string {
	return EventTypeTransferReceived
}
