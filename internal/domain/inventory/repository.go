package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
)

// StockRecordRepository defines the interface for stock record persistence
type StockRecordRepository interface {
	// FindByID finds a stock record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockRecord, error)

	// FindByIDForUpdate finds a stock record and takes an exclusive row lock.
	// Must be called inside a transaction scope.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockRecord, error)

	// FindByIDsForUpdate locks multiple records in the order of the given IDs.
	// Callers sort the IDs first so concurrent units lock in the same order.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*StockRecord, error)

	// FindByKey finds a record by its product/variant/location identity
	FindByKey(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*StockRecord, error)

	// FindByLocation finds all records at a location
	FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID, filter shared.Filter) ([]StockRecord, error)

	// FindByProducts finds all records for the given products in one query.
	// locationID narrows the result to one location when non-nil.
	FindByProducts(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID, locationID *uuid.UUID) ([]StockRecord, error)

	// FindBelowReorderPoint finds records whose available quantity has
	// reached the reorder point. locationID narrows the scan when non-nil.
	FindBelowReorderPoint(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]StockRecord, error)

	// GetOrCreate gets an existing record or creates a zeroed one
	GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*StockRecord, error)

	// Save creates or updates a stock record
	Save(ctx context.Context, record *StockRecord) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, record *StockRecord) error
}

// ReservationRepository defines the interface for reservation persistence
type ReservationRepository interface {
	// FindByID finds a reservation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindActiveByReference finds the active reservation for a reference document
	FindActiveByReference(ctx context.Context, stockRecordID uuid.UUID, referenceType, referenceID string) (*Reservation, error)

	// FindActiveByRecord finds all active reservations on a stock record
	FindActiveByRecord(ctx context.Context, stockRecordID uuid.UUID) ([]Reservation, error)

	// FindExpired finds active reservations whose deadline passed before the
	// given instant, capped at limit per sweep cycle
	FindExpired(ctx context.Context, before time.Time, limit int) ([]Reservation, error)

	// Create inserts a new reservation
	Create(ctx context.Context, reservation *Reservation) error

	// Save updates a reservation
	Save(ctx context.Context, reservation *Reservation) error
}

// TransactionRepository defines the interface for inventory transaction persistence
type TransactionRepository interface {
	// FindByID finds a transaction with its items
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryTransaction, error)

	// FindByNumber finds a transaction by its transaction number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*InventoryTransaction, error)

	// FindForTenant lists transactions for a tenant
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]InventoryTransaction, error)

	// Create inserts a new transaction with its items
	Create(ctx context.Context, tx *InventoryTransaction) error

	// Save updates a transaction and its items
	Save(ctx context.Context, tx *InventoryTransaction) error
}

// MovementRepository defines the interface for the append-only movement ledger.
// Entries are immutable, there is no update or delete.
type MovementRepository interface {
	// Create appends a single ledger entry
	Create(ctx context.Context, entry *MovementEntry) error

	// CreateBatch appends multiple ledger entries
	CreateBatch(ctx context.Context, entries []*MovementEntry) error

	// FindByStockRecord lists entries for a stock record, newest first
	FindByStockRecord(ctx context.Context, stockRecordID uuid.UUID, filter shared.Filter) ([]MovementEntry, error)

	// FindByReference lists entries recorded against a reference document
	FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType, referenceID string) ([]MovementEntry, error)

	// CountByStockRecord counts entries for a stock record
	CountByStockRecord(ctx context.Context, stockRecordID uuid.UUID) (int64, error)
}

// LotRepository defines the interface for lot persistence
type LotRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByLotNumber finds a lot on a stock record by its lot number
	FindByLotNumber(ctx context.Context, stockRecordID uuid.UUID, lotNumber string) (*Lot, error)

	// FindConsumable finds active lots with available quantity on a record,
	// ordered by received date ascending
	FindConsumable(ctx context.Context, stockRecordID uuid.UUID) ([]*Lot, error)

	// FindExpiring finds active lots expiring before the given instant
	FindExpiring(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]*Lot, error)

	// Create inserts a new lot
	Create(ctx context.Context, lot *Lot) error

	// Save updates a lot
	Save(ctx context.Context, lot *Lot) error

	// SaveAll updates multiple lots
	SaveAll(ctx context.Context, lots []*Lot) error
}

// TransferRepository defines the interface for stock transfer persistence
type TransferRepository interface {
	// FindByID finds a transfer with its items
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransfer, error)

	// FindByIDForUpdate finds a transfer and takes an exclusive row lock, so
	// concurrent ship or receive attempts on the same transfer serialize.
	// Must be called inside a transaction scope.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockTransfer, error)

	// FindByNumber finds a transfer by its transfer number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*StockTransfer, error)

	// FindForTenant lists transfers for a tenant
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockTransfer, error)

	// Create inserts a new transfer with its items
	Create(ctx context.Context, transfer *StockTransfer) error

	// Save updates a transfer and its items
	Save(ctx context.Context, transfer *StockTransfer) error
}
