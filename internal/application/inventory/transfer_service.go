package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferService manages stock transfers between locations. Each leg of a
// transfer is a committed inventory transaction: shipping commits a
// transfer_out unit on the source location, receiving commits a transfer_in
// unit on the destination. Between the two legs the stock is in transit and
// counted on neither location.
type TransferService struct {
	scope          TransactionScope
	transactions   *TransactionService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(scope TransactionScope, transactions *TransactionService, logger *zap.Logger) *TransferService {
	return &TransferService{
		scope:        scope,
		transactions: transactions,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a transfer with its items and submits it to the pending queue
func (s *TransferService) Create(ctx context.Context, tenantID uuid.UUID, req *CreateTransferRequest, actor uuid.UUID) (*TransferResponse, error) {
	transfer, err := inventory.NewStockTransfer(tenantID, req.SourceLocationID, req.DestinationLocationID, actor, req.Notes)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if err := transfer.AddItem(item.ProductID, item.VariantID, item.Quantity); err != nil {
			return nil, err
		}
	}
	if err := transfer.Submit(); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.TransferRepo().Create(ctx, transfer)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	s.logger.Info("transfer created",
		zap.String("transfer_number", transfer.TransferNumber),
		zap.Int("items", len(transfer.Items)),
	)
	return NewTransferResponse(transfer), nil
}

// Ship commits the outbound leg on the source location and marks the transfer
// shipped, all in one unit with the transfer row locked. Two concurrent ship
// calls serialize on that lock and the loser sees the shipped status. A
// failed leg rolls the whole unit back, leaving the transfer pending so it
// can be retried.
func (s *TransferService) Ship(ctx context.Context, tenantID, transferID uuid.UUID, actor uuid.UUID) (*TransferResponse, error) {
	var (
		transfer *inventory.StockTransfer
		tx       *inventory.InventoryTransaction
		events   []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		transfer, err = repos.TransferRepo().FindByIDForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer.TenantID != tenantID {
			return shared.ErrNotFound
		}
		if transfer.Status != inventory.TransferStatusPending {
			return shared.ErrInvalidState
		}

		tx, events, err = s.commitLeg(ctx, repos, transfer, legOutbound, actor)
		if err != nil {
			return err
		}
		if err := transfer.Ship(tx.ID, actor); err != nil {
			return err
		}
		return repos.TransferRepo().Save(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	events = append(events, transfer.GetDomainEvents()...)
	transfer.ClearDomainEvents()
	s.publish(ctx, events)
	s.logger.Info("transfer shipped",
		zap.String("transfer_number", transfer.TransferNumber),
		zap.String("outbound_transaction", tx.TransactionNumber),
	)
	return NewTransferResponse(transfer), nil
}

// Receive commits the inbound leg on the destination location with the
// quantities actually received and marks the transfer received, all in one
// unit with the transfer row locked. Items missing from the request receive
// their full shipped quantity. Shortfalls stay recorded on the transfer as
// discrepancies.
func (s *TransferService) Receive(ctx context.Context, tenantID, transferID uuid.UUID, req *ReceiveTransferRequest, actor uuid.UUID) (*TransferResponse, error) {
	var (
		transfer *inventory.StockTransfer
		events   []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		transfer, err = repos.TransferRepo().FindByIDForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer.TenantID != tenantID {
			return shared.ErrNotFound
		}
		if transfer.Status != inventory.TransferStatusShipped {
			return shared.ErrInvalidState
		}

		received := s.resolveReceived(transfer, req)
		for i := range transfer.Items {
			item := &transfer.Items[i]
			if received[item.ID] < 0 || received[item.ID] > item.QuantityShipped {
				return shared.ErrInvalidInput
			}
		}

		tx, legEvents, err := s.commitLeg(ctx, repos, transfer, legInbound(received), actor)
		if err != nil {
			return err
		}
		events = legEvents
		if err := transfer.Receive(tx.ID, actor, received); err != nil {
			return err
		}
		return repos.TransferRepo().Save(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	events = append(events, transfer.GetDomainEvents()...)
	transfer.ClearDomainEvents()
	s.publish(ctx, events)
	if transfer.HasDiscrepancy() {
		s.logger.Warn("transfer received with discrepancy",
			zap.String("transfer_number", transfer.TransferNumber),
		)
	}
	return NewTransferResponse(transfer), nil
}

// Cancel abandons a transfer that has not shipped yet
func (s *TransferService) Cancel(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	var transfer *inventory.StockTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		transfer, err = repos.TransferRepo().FindByIDForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer.TenantID != tenantID {
			return shared.ErrNotFound
		}
		if err := transfer.Cancel(); err != nil {
			return err
		}
		return repos.TransferRepo().Save(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}
	return NewTransferResponse(transfer), nil
}

// Get returns a transfer with its items
func (s *TransferService) Get(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	transfer, err := s.findTransfer(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}
	return NewTransferResponse(transfer), nil
}

// List lists transfers for a tenant
func (s *TransferService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*TransferResponse, error) {
	var transfers []inventory.StockTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		transfers, err = repos.TransferRepo().FindForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	responses := make([]*TransferResponse, 0, len(transfers))
	for i := range transfers {
		responses = append(responses, NewTransferResponse(&transfers[i]))
	}
	return responses, nil
}

// transferLeg describes how to turn transfer items into transaction items
type transferLeg struct {
	movementType inventory.MovementType
	locationOf   func(t *inventory.StockTransfer) uuid.UUID
	quantityOf   func(item *inventory.TransferItem) int64
	costed       bool
}

var legOutbound = transferLeg{
	movementType: inventory.MovementTypeTransferOut,
	locationOf:   func(t *inventory.StockTransfer) uuid.UUID { return t.SourceLocationID },
	quantityOf:   func(item *inventory.TransferItem) int64 { return item.QuantityRequested },
}

// legInbound values received stock at the source record's current average
// cost, so value follows the stock across locations.
func legInbound(received map[uuid.UUID]int64) transferLeg {
	return transferLeg{
		movementType: inventory.MovementTypeTransferIn,
		locationOf:   func(t *inventory.StockTransfer) uuid.UUID { return t.DestinationLocationID },
		quantityOf:   func(item *inventory.TransferItem) int64 { return received[item.ID] },
		costed:       true,
	}
}

// commitLeg builds and commits the inventory transaction for one leg of the
// transfer inside the caller's scope, so the leg and the transfer's status
// transition share one database transaction. The transaction references the
// transfer by number so the movement ledger ties both legs back to it.
func (s *TransferService) commitLeg(ctx context.Context, repos TransactionalRepositories, transfer *inventory.StockTransfer, leg transferLeg, actor uuid.UUID) (*inventory.InventoryTransaction, []shared.DomainEvent, error) {
	source := transfer.SourceLocationID
	destination := transfer.DestinationLocationID
	tx, err := inventory.NewInventoryTransaction(transfer.TenantID, leg.movementType, &source, &destination, actor, transfer.Notes)
	if err != nil {
		return nil, nil, err
	}
	tx.ReferenceType = "transfer"
	tx.ReferenceID = transfer.TransferNumber

	for i := range transfer.Items {
		item := &transfer.Items[i]
		quantity := leg.quantityOf(item)
		if quantity == 0 {
			continue
		}
		record, err := repos.StockRecordRepo().GetOrCreate(ctx, transfer.TenantID, item.ProductID, item.VariantID, leg.locationOf(transfer))
		if err != nil {
			return nil, nil, err
		}
		var unitCost *decimal.Decimal
		if leg.costed {
			unitCost, err = s.sourceCost(ctx, repos, transfer, item)
			if err != nil {
				return nil, nil, err
			}
		}
		if _, err := tx.AddItem(record, quantity, unitCost, ""); err != nil {
			return nil, nil, err
		}
	}

	if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	if err := tx.Start(); err != nil {
		return nil, nil, err
	}

	records, err := s.transactions.lockRecords(ctx, repos, tx)
	if err != nil {
		return nil, nil, err
	}

	var events []shared.DomainEvent
	for i := range tx.Items {
		item := &tx.Items[i]
		record := records[item.StockRecordID]
		if record == nil {
			return nil, nil, shared.ErrNotFound
		}
		entry, err := s.transactions.applyItem(ctx, repos, tx, item, record)
		if err != nil {
			return nil, nil, fmt.Errorf("transfer %s %s leg failed: %w", transfer.TransferNumber, leg.movementType, err)
		}
		if err := repos.MovementRepo().Create(ctx, entry); err != nil {
			return nil, nil, fmt.Errorf("failed to append movement entry: %w", err)
		}
	}

	for _, record := range records {
		if err := repos.StockRecordRepo().Save(ctx, record); err != nil {
			return nil, nil, fmt.Errorf("failed to save stock record: %w", err)
		}
		if record.IsBelowReorderPoint() {
			events = append(events, inventory.NewStockBelowReorderPointEvent(record))
		}
	}

	if err := tx.Complete(); err != nil {
		return nil, nil, err
	}
	if err := repos.TransactionRepo().Save(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	events = append(events, tx.GetDomainEvents()...)
	tx.ClearDomainEvents()
	return tx, events, nil
}

// sourceCost reads the source record's average cost at receive time. A
// missing source record leaves the inbound item unvalued.
func (s *TransferService) sourceCost(ctx context.Context, repos TransactionalRepositories, transfer *inventory.StockTransfer, item *inventory.TransferItem) (*decimal.Decimal, error) {
	record, err := repos.StockRecordRepo().FindByKey(ctx, transfer.TenantID, item.ProductID, item.VariantID, transfer.SourceLocationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	cost := record.AverageCost
	return &cost, nil
}

// resolveReceived fills the received-quantity map with the shipped quantity
// for every item the request left out.
func (s *TransferService) resolveReceived(transfer *inventory.StockTransfer, req *ReceiveTransferRequest) map[uuid.UUID]int64 {
	received := make(map[uuid.UUID]int64, len(transfer.Items))
	for i := range transfer.Items {
		item := &transfer.Items[i]
		if req != nil {
			if quantity, ok := req.ReceivedQuantities[item.ID]; ok {
				received[item.ID] = quantity
				continue
			}
		}
		received[item.ID] = item.QuantityShipped
	}
	return received
}

func (s *TransferService) findTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*inventory.StockTransfer, error) {
	var transfer *inventory.StockTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		transfer, err = repos.TransferRepo().FindByID(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer.TenantID != tenantID {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *TransferService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
