package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService handles reservation and single-record ledger operations.
// Every mutation runs inside a transaction scope with the affected stock
// record row-locked, writes exactly one movement entry, and re-checks the
// balance invariant before the unit commits.
type LedgerService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		scope:  scope,
		logger: logger,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Reserve holds a quantity of available stock against a reference document.
// The record is row-locked for the availability check, the counter update,
// the reservation insert and the ledger append, so two competing reserves
// cannot both succeed on the last unit.
func (s *LedgerService) Reserve(ctx context.Context, tenantID uuid.UUID, req *ReserveStockRequest, actor uuid.UUID) (*ReservationResponse, error) {
	var (
		reservation *inventory.Reservation
		events      []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.StockRecordRepo().FindByKey(ctx, tenantID, req.ProductID, req.VariantID, req.LocationID)
		if err != nil {
			return err
		}
		record, err = repos.StockRecordRepo().FindByIDForUpdate(ctx, record.ID)
		if err != nil {
			return err
		}

		existing, err := repos.ReservationRepo().FindActiveByReference(ctx, record.ID, req.ReferenceType, req.ReferenceID)
		if err != nil && err != shared.ErrNotFound {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists
		}

		reservedUntil := time.Time{}
		if req.ReservedUntil != nil {
			reservedUntil = *req.ReservedUntil
		}
		reservation, err = inventory.NewReservation(tenantID, record.ID, req.Quantity, req.ReferenceType, req.ReferenceID, reservedUntil, actor)
		if err != nil {
			return err
		}

		before := record.Snapshot()
		if err := record.ApplyDelta(0, req.Quantity); err != nil {
			return err
		}

		if err := repos.ReservationRepo().Create(ctx, reservation); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		entry := inventory.NewMovementEntry(
			record, inventory.MovementTypeReservation, 0, req.Quantity, before,
			nil, req.ReferenceType, req.ReferenceID, "", "", actor,
		)
		if err := repos.MovementRepo().Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to append movement entry: %w", err)
		}
		if err := repos.StockRecordRepo().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save stock record: %w", err)
		}

		events = append(events, inventory.NewStockReservedEvent(record, reservation))
		if record.IsBelowReorderPoint() {
			events = append(events, inventory.NewStockBelowReorderPointEvent(record))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("stock reserved",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("reference_type", reservation.ReferenceType),
		zap.String("reference_id", reservation.ReferenceID),
		zap.Int64("quantity", reservation.Quantity),
	)
	return NewReservationResponse(reservation), nil
}

// Release returns a reservation's quantity to availability. Releasing a
// reservation that is no longer active reports released=false instead of an
// error, so callers and the expiry sweep can race safely.
func (s *LedgerService) Release(ctx context.Context, tenantID, reservationID, actor uuid.UUID) (*ReleaseReservationResponse, error) {
	resp := &ReleaseReservationResponse{ReservationID: reservationID}
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.TenantID != tenantID {
			return shared.ErrNotFound
		}

		record, err := repos.StockRecordRepo().FindByIDForUpdate(ctx, reservation.StockRecordID)
		if err != nil {
			return err
		}

		if !reservation.IsActive() {
			resp.Released = false
			resp.Status = reservation.Status.String()
			return nil
		}

		if err := reservation.Release(); err != nil {
			return err
		}
		before := record.Snapshot()
		if err := record.ApplyDelta(0, -reservation.Quantity); err != nil {
			return err
		}

		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return fmt.Errorf("failed to save reservation: %w", err)
		}
		entry := inventory.NewMovementEntry(
			record, inventory.MovementTypeRelease, 0, -reservation.Quantity, before,
			nil, reservation.ReferenceType, reservation.ReferenceID, "", "", actor,
		)
		if err := repos.MovementRepo().Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to append movement entry: %w", err)
		}
		if err := repos.StockRecordRepo().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save stock record: %w", err)
		}

		resp.Released = true
		resp.Status = reservation.Status.String()
		events = append(events, inventory.NewReservationReleasedEvent(record, reservation))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return resp, nil
}

// Allocate marks an active reservation as consumed by fulfillment. Counters
// stay untouched, the consuming outbound transaction applies the paired
// on-hand and reserved decrements.
func (s *LedgerService) Allocate(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationResponse, error) {
	var (
		reservation *inventory.Reservation
		events      []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		reservation, err = repos.ReservationRepo().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.TenantID != tenantID {
			return shared.ErrNotFound
		}

		// Lock the record so allocate and the expiry sweep serialize.
		if _, err := repos.StockRecordRepo().FindByIDForUpdate(ctx, reservation.StockRecordID); err != nil {
			return err
		}
		if err := reservation.Allocate(); err != nil {
			return err
		}
		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return fmt.Errorf("failed to save reservation: %w", err)
		}
		events = append(events, inventory.NewReservationAllocatedEvent(tenantID, reservation))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return NewReservationResponse(reservation), nil
}

// ReceiveLot receives a quantity into a named lot: on-hand goes up, the lot
// is created at its own unit cost, the rolling average absorbs the receipt
// and an inbound movement is appended, all in one unit.
func (s *LedgerService) ReceiveLot(ctx context.Context, tenantID uuid.UUID, req *ReceiveLotRequest, actor uuid.UUID) (*LotResponse, error) {
	var (
		lot    *inventory.Lot
		events []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.StockRecordRepo().GetOrCreate(ctx, tenantID, req.ProductID, req.VariantID, req.LocationID)
		if err != nil {
			return err
		}
		record, err = repos.StockRecordRepo().FindByIDForUpdate(ctx, record.ID)
		if err != nil {
			return err
		}

		if existing, err := repos.LotRepo().FindByLotNumber(ctx, record.ID, req.LotNumber); err != nil && err != shared.ErrNotFound {
			return err
		} else if existing != nil {
			return shared.ErrAlreadyExists
		}

		receivedDate := time.Now()
		if req.ReceivedDate != nil {
			receivedDate = *req.ReceivedDate
		}
		lot, err = inventory.NewLot(tenantID, record.ID, req.LotNumber, req.Quantity, req.UnitCost, receivedDate, req.ExpiryDate)
		if err != nil {
			return err
		}

		before := record.Snapshot()
		if err := record.ApplyDelta(req.Quantity, 0); err != nil {
			return err
		}
		record.ApplyInboundCost(req.Quantity, req.UnitCost)

		if err := repos.LotRepo().Create(ctx, lot); err != nil {
			return fmt.Errorf("failed to create lot: %w", err)
		}
		entry := inventory.NewMovementEntry(
			record, inventory.MovementTypeInbound, req.Quantity, 0, before,
			&req.UnitCost, "lot_receipt", req.ReferenceID, req.LotNumber, "", actor,
		)
		if err := repos.MovementRepo().Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to append movement entry: %w", err)
		}
		if err := repos.StockRecordRepo().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save stock record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("lot received",
		zap.String("lot_number", lot.LotNumber),
		zap.Int64("quantity", lot.QuantityReceived),
	)
	return NewLotResponse(lot), nil
}

// GetStockLevel returns the current counters for a product at a location
func (s *LedgerService) GetStockLevel(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*StockLevelResponse, error) {
	var record *inventory.StockRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.StockRecordRepo().FindByKey(ctx, tenantID, productID, variantID, locationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewStockLevelResponse(record), nil
}

// GetStockLevels returns the current counters for many products in one
// query. Products that have never moved simply have no rows in the result,
// they are not an error.
func (s *LedgerService) GetStockLevels(ctx context.Context, tenantID uuid.UUID, req *BulkStockLevelsRequest) ([]*StockLevelResponse, error) {
	if len(req.ProductIDs) == 0 {
		return nil, shared.ErrInvalidInput
	}

	var records []inventory.StockRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		records, err = repos.StockRecordRepo().FindByProducts(ctx, tenantID, req.ProductIDs, req.LocationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]*StockLevelResponse, 0, len(records))
	for i := range records {
		responses = append(responses, NewStockLevelResponse(&records[i]))
	}
	return responses, nil
}

// ListLowStock returns all records at or under their reorder point,
// recomputed from live counters on every call. locationID narrows the scan
// when non-nil.
func (s *LedgerService) ListLowStock(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]*StockLevelResponse, error) {
	var records []inventory.StockRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		records, err = repos.StockRecordRepo().FindBelowReorderPoint(ctx, tenantID, locationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]*StockLevelResponse, 0, len(records))
	for i := range records {
		responses = append(responses, NewStockLevelResponse(&records[i]))
	}
	return responses, nil
}

// ListMovements returns the ledger entries for a product at a location,
// newest first
func (s *LedgerService) ListMovements(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID, filter shared.Filter) ([]*MovementEntryResponse, error) {
	var entries []inventory.MovementEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.StockRecordRepo().FindByKey(ctx, tenantID, productID, variantID, locationID)
		if err != nil {
			return err
		}
		entries, err = repos.MovementRepo().FindByStockRecord(ctx, record.ID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]*MovementEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, NewMovementEntryResponse(&entries[i]))
	}
	return responses, nil
}

// SetReorderRule configures the low-stock threshold for a record, creating
// the record if the product has never moved at the location
func (s *LedgerService) SetReorderRule(ctx context.Context, tenantID uuid.UUID, req *SetReorderRuleRequest) (*StockLevelResponse, error) {
	var record *inventory.StockRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.StockRecordRepo().GetOrCreate(ctx, tenantID, req.ProductID, req.VariantID, req.LocationID)
		if err != nil {
			return err
		}
		if err := record.SetReorderRule(req.ReorderPoint, req.ReorderQuantity); err != nil {
			return err
		}
		return repos.StockRecordRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return NewStockLevelResponse(record), nil
}

func (s *LedgerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
