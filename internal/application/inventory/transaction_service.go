package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionService coordinates multi-record stock mutations as
// all-or-nothing units. Commit locks every touched record in a deterministic
// order (sorted by record ID) so concurrent transactions over overlapping
// record sets cannot deadlock.
type TransactionService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(scope TransactionScope, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		scope:  scope,
		logger: logger,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *TransactionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Start opens a pending transaction that items can be added to
func (s *TransactionService) Start(ctx context.Context, tenantID uuid.UUID, req *StartTransactionRequest, actor uuid.UUID) (*TransactionResponse, error) {
	tx, err := inventory.NewInventoryTransaction(
		tenantID,
		inventory.MovementType(req.MovementType),
		req.SourceLocationID,
		req.DestinationLocationID,
		actor,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	tx.ReferenceType = req.ReferenceType
	tx.ReferenceID = req.ReferenceID

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.TransactionRepo().Create(ctx, tx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.Info("transaction started",
		zap.String("transaction_number", tx.TransactionNumber),
		zap.String("movement_type", tx.MovementType.String()),
	)
	return NewTransactionResponse(tx), nil
}

// AddItem appends a line to a pending transaction, snapshotting the target
// record's current counters. The snapshot is informational: commit validates
// against live values and records drift in the movement reason.
func (s *TransactionService) AddItem(ctx context.Context, tenantID, transactionID uuid.UUID, req *AddTransactionItemRequest) (*TransactionResponse, error) {
	var tx *inventory.InventoryTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tx, err = repos.TransactionRepo().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.TenantID != tenantID {
			return shared.ErrNotFound
		}

		record, err := repos.StockRecordRepo().GetOrCreate(ctx, tenantID, req.ProductID, req.VariantID, req.LocationID)
		if err != nil {
			return err
		}

		if _, err := tx.AddItem(record, req.Quantity, req.UnitCost, req.LotNumber); err != nil {
			return err
		}
		return repos.TransactionRepo().Save(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return NewTransactionResponse(tx), nil
}

// Commit applies every item of a pending transaction inside one database
// transaction. All touched records are locked in sorted-ID order before any
// delta is applied; each applied delta appends exactly one movement entry
// and updates valuation. Any failure rolls the whole unit back and the
// transaction is marked failed with the reason.
func (s *TransactionService) Commit(ctx context.Context, tenantID, transactionID uuid.UUID) (*TransactionResponse, error) {
	var (
		tx     *inventory.InventoryTransaction
		events []shared.DomainEvent
	)

	commitErr := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tx, err = repos.TransactionRepo().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.TenantID != tenantID {
			return shared.ErrNotFound
		}
		if err := tx.Start(); err != nil {
			return err
		}

		records, err := s.lockRecords(ctx, repos, tx)
		if err != nil {
			return err
		}

		for i := range tx.Items {
			item := &tx.Items[i]
			record := records[item.StockRecordID]
			if record == nil {
				return shared.ErrNotFound
			}
			entry, err := s.applyItem(ctx, repos, tx, item, record)
			if err != nil {
				return fmt.Errorf("item %d (%s): %w", i, item.ProductID, err)
			}
			if err := repos.MovementRepo().Create(ctx, entry); err != nil {
				return fmt.Errorf("failed to append movement entry: %w", err)
			}
		}

		for _, record := range records {
			if err := repos.StockRecordRepo().Save(ctx, record); err != nil {
				return fmt.Errorf("failed to save stock record: %w", err)
			}
			if record.IsBelowReorderPoint() {
				events = append(events, inventory.NewStockBelowReorderPointEvent(record))
			}
		}

		if err := tx.Complete(); err != nil {
			return err
		}
		if err := repos.TransactionRepo().Save(ctx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		events = append(events, tx.GetDomainEvents()...)
		tx.ClearDomainEvents()
		return nil
	})

	if commitErr != nil {
		s.markFailed(ctx, tenantID, transactionID, commitErr)
		return nil, commitErr
	}

	s.publish(ctx, events)
	s.logger.Info("transaction committed",
		zap.String("transaction_number", tx.TransactionNumber),
		zap.Int("items", len(tx.Items)),
	)
	return NewTransactionResponse(tx), nil
}

// Cancel abandons a pending transaction before any stock was touched
func (s *TransactionService) Cancel(ctx context.Context, tenantID, transactionID uuid.UUID) (*TransactionResponse, error) {
	var tx *inventory.InventoryTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tx, err = repos.TransactionRepo().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.TenantID != tenantID {
			return shared.ErrNotFound
		}
		if err := tx.Cancel(); err != nil {
			return err
		}
		return repos.TransactionRepo().Save(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return NewTransactionResponse(tx), nil
}

// Get returns a transaction with its items
func (s *TransactionService) Get(ctx context.Context, tenantID, transactionID uuid.UUID) (*TransactionResponse, error) {
	var tx *inventory.InventoryTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tx, err = repos.TransactionRepo().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.TenantID != tenantID {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewTransactionResponse(tx), nil
}

// lockRecords takes exclusive row locks on every record the transaction
// touches, in ascending ID order so concurrent commits over overlapping
// sets acquire in the same sequence.
func (s *TransactionService) lockRecords(ctx context.Context, repos TransactionalRepositories, tx *inventory.InventoryTransaction) (map[uuid.UUID]*inventory.StockRecord, error) {
	seen := make(map[uuid.UUID]bool, len(tx.Items))
	ids := make([]uuid.UUID, 0, len(tx.Items))
	for i := range tx.Items {
		id := tx.Items[i].StockRecordID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	locked, err := repos.StockRecordRepo().FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	records := make(map[uuid.UUID]*inventory.StockRecord, len(locked))
	for _, record := range locked {
		records[record.ID] = record
	}
	return records, nil
}

// applyItem applies one transaction line to its locked record and builds the
// ledger entry for it.
func (s *TransactionService) applyItem(
	ctx context.Context,
	repos TransactionalRepositories,
	tx *inventory.InventoryTransaction,
	item *inventory.TransactionItem,
	record *inventory.StockRecord,
) (*inventory.MovementEntry, error) {
	onHandDelta, reservedDelta := tx.MovementType.Deltas(item.Quantity)
	before := record.Snapshot()

	reason := ""
	if before.QuantityBefore != item.QuantityBefore || before.ReservedBefore != item.ReservedBefore {
		reason = fmt.Sprintf("snapshot drift: added at on_hand=%d reserved=%d", item.QuantityBefore, item.ReservedBefore)
	}

	if err := record.ApplyDelta(onHandDelta, reservedDelta); err != nil {
		return nil, err
	}

	unitCost := item.UnitCost
	switch {
	case tx.MovementType.AddsStock():
		if item.UnitCost != nil {
			record.ApplyInboundCost(item.Quantity, *item.UnitCost)
			if item.LotNumber != "" {
				lot, err := inventory.NewLot(tx.TenantID, record.ID, item.LotNumber, item.Quantity, *item.UnitCost, tx.CreatedAt, nil)
				if err != nil {
					return nil, err
				}
				if err := repos.LotRepo().Create(ctx, lot); err != nil {
					return nil, fmt.Errorf("failed to create lot: %w", err)
				}
			}
		}
	case tx.MovementType.RemovesStock():
		cost, err := s.costOutbound(ctx, repos, record, item.Quantity)
		if err != nil {
			return nil, err
		}
		unitCost = cost
	}

	item.MarkProcessed(item.Quantity)

	referenceType := tx.ReferenceType
	referenceID := tx.ReferenceID
	if referenceType == "" {
		referenceType = "transaction"
		referenceID = tx.TransactionNumber
	}
	return inventory.NewMovementEntry(
		record, tx.MovementType, onHandDelta, reservedDelta, before,
		unitCost, referenceType, referenceID, item.LotNumber, reason, tx.PerformedBy,
	), nil
}

// costOutbound values an outbound quantity with the record's cost method,
// consuming lots for FIFO/LIFO methods. A record whose stock was never
// received into lots has nothing to consume, so its outbound falls back to
// the rolling average instead of failing.
func (s *TransactionService) costOutbound(ctx context.Context, repos TransactionalRepositories, record *inventory.StockRecord, quantity int64) (*decimal.Decimal, error) {
	costStrategy, err := inventory.NewCostStrategy(record.CostMethod)
	if err != nil {
		return nil, err
	}

	var lots []*inventory.Lot
	if costStrategy.Method() != strategy.CostMethodAverage {
		lots, err = repos.LotRepo().FindConsumable(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		if len(lots) == 0 {
			costStrategy = inventory.NewAverageCostStrategy()
		}
	}

	result, err := costStrategy.CostOutbound(quantity, record.AverageCost, inventory.LotEntries(lots))
	if err != nil {
		return nil, err
	}

	if len(result.Consumed) > 0 {
		byNumber := make(map[string]*inventory.Lot, len(lots))
		for _, lot := range lots {
			byNumber[lot.LotNumber] = lot
		}
		touched := make([]*inventory.Lot, 0, len(result.Consumed))
		for _, consumption := range result.Consumed {
			lot := byNumber[consumption.LotNumber]
			if lot == nil {
				return nil, shared.ErrInsufficientLots
			}
			if taken := lot.Consume(consumption.Quantity); taken != consumption.Quantity {
				return nil, shared.ErrInsufficientLots
			}
			touched = append(touched, lot)
		}
		if err := repos.LotRepo().SaveAll(ctx, touched); err != nil {
			return nil, fmt.Errorf("failed to save lots: %w", err)
		}
	}

	unitCost := result.UnitCost
	return &unitCost, nil
}

// markFailed persists the failed status with the rollback reason in its own
// unit, after the commit unit already rolled back.
func (s *TransactionService) markFailed(ctx context.Context, tenantID, transactionID uuid.UUID, cause error) {
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := repos.TransactionRepo().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.TenantID != tenantID || tx.IsTerminal() {
			return nil
		}
		if tx.Status == inventory.TransactionStatusPending {
			if err := tx.Start(); err != nil {
				return err
			}
		}
		if err := tx.Fail(cause.Error()); err != nil {
			return err
		}
		if err := repos.TransactionRepo().Save(ctx, tx); err != nil {
			return err
		}
		s.publish(ctx, tx.GetDomainEvents())
		tx.ClearDomainEvents()
		return nil
	})
	if err != nil {
		s.logger.Error("failed to record transaction failure",
			zap.String("transaction_id", transactionID.String()),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}

func (s *TransactionService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
