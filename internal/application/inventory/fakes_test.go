package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/domain/shared/strategy"
	"github.com/google/uuid"
)

// memStore backs the in-memory repositories used by the service tests.
// Reads hand out copies and writes replace the stored value, so a unit that
// errors out before saving leaves the stored aggregates untouched.
type memStore struct {
	records      map[uuid.UUID]*inventory.StockRecord
	reservations map[uuid.UUID]*inventory.Reservation
	transactions map[uuid.UUID]*inventory.InventoryTransaction
	movements    []*inventory.MovementEntry
	lots         map[uuid.UUID]*inventory.Lot
	transfers    map[uuid.UUID]*inventory.StockTransfer
}

func newMemStore() *memStore {
	return &memStore{
		records:      make(map[uuid.UUID]*inventory.StockRecord),
		reservations: make(map[uuid.UUID]*inventory.Reservation),
		transactions: make(map[uuid.UUID]*inventory.InventoryTransaction),
		lots:         make(map[uuid.UUID]*inventory.Lot),
		transfers:    make(map[uuid.UUID]*inventory.StockTransfer),
	}
}

func (s *memStore) scope() *NoOpTransactionScope {
	return NewNoOpTransactionScope(
		&memStockRecordRepo{s},
		&memReservationRepo{s},
		&memTransactionRepo{s},
		&memMovementRepo{s},
		&memLotRepo{s},
		&memTransferRepo{s},
	)
}

func cloneRecord(r *inventory.StockRecord) *inventory.StockRecord {
	c := *r
	return &c
}

func cloneReservation(r *inventory.Reservation) *inventory.Reservation {
	c := *r
	return &c
}

func cloneTransaction(t *inventory.InventoryTransaction) *inventory.InventoryTransaction {
	c := *t
	c.Items = append([]inventory.TransactionItem(nil), t.Items...)
	return &c
}

func cloneLot(l *inventory.Lot) *inventory.Lot {
	c := *l
	return &c
}

func cloneTransfer(t *inventory.StockTransfer) *inventory.StockTransfer {
	c := *t
	c.Items = append([]inventory.TransferItem(nil), t.Items...)
	return &c
}

type memStockRecordRepo struct{ s *memStore }

func (r *memStockRecordRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockRecord, error) {
	record, ok := r.s.records[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (r *memStockRecordRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockRecord, error) {
	return r.FindByID(ctx, id)
}

func (r *memStockRecordRepo) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*inventory.StockRecord, error) {
	records := make([]*inventory.StockRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *memStockRecordRepo) FindByKey(_ context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*inventory.StockRecord, error) {
	for _, record := range r.s.records {
		if record.TenantID == tenantID && record.MatchesKey(productID, variantID, locationID) {
			return cloneRecord(record), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRecordRepo) FindByLocation(_ context.Context, tenantID, locationID uuid.UUID, _ shared.Filter) ([]inventory.StockRecord, error) {
	var out []inventory.StockRecord
	for _, record := range r.s.records {
		if record.TenantID == tenantID && record.LocationID == locationID {
			out = append(out, *cloneRecord(record))
		}
	}
	return out, nil
}

func (r *memStockRecordRepo) FindByProducts(_ context.Context, tenantID uuid.UUID, productIDs []uuid.UUID, locationID *uuid.UUID) ([]inventory.StockRecord, error) {
	wanted := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}
	var out []inventory.StockRecord
	for _, record := range r.s.records {
		if record.TenantID != tenantID || !wanted[record.ProductID] {
			continue
		}
		if locationID != nil && record.LocationID != *locationID {
			continue
		}
		out = append(out, *cloneRecord(record))
	}
	return out, nil
}

func (r *memStockRecordRepo) FindBelowReorderPoint(_ context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]inventory.StockRecord, error) {
	var out []inventory.StockRecord
	for _, record := range r.s.records {
		if record.TenantID != tenantID || !record.IsBelowReorderPoint() {
			continue
		}
		if locationID != nil && record.LocationID != *locationID {
			continue
		}
		out = append(out, *cloneRecord(record))
	}
	return out, nil
}

func (r *memStockRecordRepo) GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*inventory.StockRecord, error) {
	record, err := r.FindByKey(ctx, tenantID, productID, variantID, locationID)
	if err == nil {
		return record, nil
	}
	record = inventory.NewStockRecord(tenantID, productID, variantID, locationID, strategy.CostMethodAverage)
	r.s.records[record.ID] = cloneRecord(record)
	return record, nil
}

func (r *memStockRecordRepo) Save(_ context.Context, record *inventory.StockRecord) error {
	r.s.records[record.ID] = cloneRecord(record)
	return nil
}

func (r *memStockRecordRepo) SaveWithLock(ctx context.Context, record *inventory.StockRecord) error {
	return r.Save(ctx, record)
}

type memReservationRepo struct{ s *memStore }

func (r *memReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Reservation, error) {
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneReservation(res), nil
}

func (r *memReservationRepo) FindActiveByReference(_ context.Context, stockRecordID uuid.UUID, referenceType, referenceID string) (*inventory.Reservation, error) {
	for _, res := range r.s.reservations {
		if res.StockRecordID == stockRecordID && res.ReferenceType == referenceType &&
			res.ReferenceID == referenceID && res.IsActive() {
			return cloneReservation(res), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memReservationRepo) FindActiveByRecord(_ context.Context, stockRecordID uuid.UUID) ([]inventory.Reservation, error) {
	var out []inventory.Reservation
	for _, res := range r.s.reservations {
		if res.StockRecordID == stockRecordID && res.IsActive() {
			out = append(out, *cloneReservation(res))
		}
	}
	return out, nil
}

func (r *memReservationRepo) FindExpired(_ context.Context, before time.Time, limit int) ([]inventory.Reservation, error) {
	var out []inventory.Reservation
	for _, res := range r.s.reservations {
		if res.IsExpired(before) {
			out = append(out, *cloneReservation(res))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Create enforces the schema's active-only uniqueness on
// (stock_record_id, reference_type, reference_id): settled rows stay behind
// and do not block a new hold for the same reference.
func (r *memReservationRepo) Create(_ context.Context, reservation *inventory.Reservation) error {
	for _, existing := range r.s.reservations {
		if existing.IsActive() && existing.StockRecordID == reservation.StockRecordID &&
			existing.ReferenceType == reservation.ReferenceType &&
			existing.ReferenceID == reservation.ReferenceID {
			return shared.ErrAlreadyExists
		}
	}
	r.s.reservations[reservation.ID] = cloneReservation(reservation)
	return nil
}

func (r *memReservationRepo) Save(_ context.Context, reservation *inventory.Reservation) error {
	r.s.reservations[reservation.ID] = cloneReservation(reservation)
	return nil
}

type memTransactionRepo struct{ s *memStore }

func (r *memTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryTransaction, error) {
	tx, ok := r.s.transactions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneTransaction(tx), nil
}

func (r *memTransactionRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*inventory.InventoryTransaction, error) {
	for _, tx := range r.s.transactions {
		if tx.TenantID == tenantID && tx.TransactionNumber == number {
			return cloneTransaction(tx), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memTransactionRepo) FindForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.InventoryTransaction, error) {
	var out []inventory.InventoryTransaction
	for _, tx := range r.s.transactions {
		if tx.TenantID == tenantID {
			out = append(out, *cloneTransaction(tx))
		}
	}
	return out, nil
}

func (r *memTransactionRepo) Create(_ context.Context, tx *inventory.InventoryTransaction) error {
	r.s.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (r *memTransactionRepo) Save(_ context.Context, tx *inventory.InventoryTransaction) error {
	r.s.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(_ context.Context, entry *inventory.MovementEntry) error {
	c := *entry
	r.s.movements = append(r.s.movements, &c)
	return nil
}

func (r *memMovementRepo) CreateBatch(ctx context.Context, entries []*inventory.MovementEntry) error {
	for _, entry := range entries {
		if err := r.Create(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *memMovementRepo) FindByStockRecord(_ context.Context, stockRecordID uuid.UUID, _ shared.Filter) ([]inventory.MovementEntry, error) {
	var out []inventory.MovementEntry
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].StockRecordID == stockRecordID {
			out = append(out, *r.s.movements[i])
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, tenantID uuid.UUID, referenceType, referenceID string) ([]inventory.MovementEntry, error) {
	var out []inventory.MovementEntry
	for _, entry := range r.s.movements {
		if entry.TenantID == tenantID && entry.ReferenceType == referenceType && entry.ReferenceID == referenceID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *memMovementRepo) CountByStockRecord(_ context.Context, stockRecordID uuid.UUID) (int64, error) {
	var count int64
	for _, entry := range r.s.movements {
		if entry.StockRecordID == stockRecordID {
			count++
		}
	}
	return count, nil
}

type memLotRepo struct{ s *memStore }

func (r *memLotRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Lot, error) {
	lot, ok := r.s.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneLot(lot), nil
}

func (r *memLotRepo) FindByLotNumber(_ context.Context, stockRecordID uuid.UUID, lotNumber string) (*inventory.Lot, error) {
	for _, lot := range r.s.lots {
		if lot.StockRecordID == stockRecordID && lot.LotNumber == lotNumber {
			return cloneLot(lot), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLotRepo) FindConsumable(_ context.Context, stockRecordID uuid.UUID) ([]*inventory.Lot, error) {
	var out []*inventory.Lot
	for _, lot := range r.s.lots {
		if lot.StockRecordID == stockRecordID && lot.IsConsumable() {
			out = append(out, cloneLot(lot))
		}
	}
	return out, nil
}

func (r *memLotRepo) FindExpiring(_ context.Context, tenantID uuid.UUID, before time.Time) ([]*inventory.Lot, error) {
	var out []*inventory.Lot
	for _, lot := range r.s.lots {
		if lot.TenantID == tenantID && lot.ExpiryDate != nil && lot.ExpiryDate.Before(before) {
			out = append(out, cloneLot(lot))
		}
	}
	return out, nil
}

func (r *memLotRepo) Create(_ context.Context, lot *inventory.Lot) error {
	r.s.lots[lot.ID] = cloneLot(lot)
	return nil
}

func (r *memLotRepo) Save(_ context.Context, lot *inventory.Lot) error {
	r.s.lots[lot.ID] = cloneLot(lot)
	return nil
}

func (r *memLotRepo) SaveAll(ctx context.Context, lots []*inventory.Lot) error {
	for _, lot := range lots {
		if err := r.Save(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

type memTransferRepo struct{ s *memStore }

func (r *memTransferRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	transfer, ok := r.s.transfers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneTransfer(transfer), nil
}

func (r *memTransferRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	return r.FindByID(ctx, id)
}

func (r *memTransferRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*inventory.StockTransfer, error) {
	for _, transfer := range r.s.transfers {
		if transfer.TenantID == tenantID && transfer.TransferNumber == number {
			return cloneTransfer(transfer), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memTransferRepo) FindForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.StockTransfer, error) {
	var out []inventory.StockTransfer
	for _, transfer := range r.s.transfers {
		if transfer.TenantID == tenantID {
			out = append(out, *cloneTransfer(transfer))
		}
	}
	return out, nil
}

func (r *memTransferRepo) Create(_ context.Context, transfer *inventory.StockTransfer) error {
	r.s.transfers[transfer.ID] = cloneTransfer(transfer)
	return nil
}

func (r *memTransferRepo) Save(_ context.Context, transfer *inventory.StockTransfer) error {
	r.s.transfers[transfer.ID] = cloneTransfer(transfer)
	return nil
}

var _ inventory.StockRecordRepository = (*memStockRecordRepo)(nil)
var _ inventory.ReservationRepository = (*memReservationRepo)(nil)
var _ inventory.TransactionRepository = (*memTransactionRepo)(nil)
var _ inventory.MovementRepository = (*memMovementRepo)(nil)
var _ inventory.LotRepository = (*memLotRepo)(nil)
var _ inventory.TransferRepository = (*memTransferRepo)(nil)
