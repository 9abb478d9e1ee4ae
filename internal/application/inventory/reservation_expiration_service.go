package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultExpirationBatchSize caps how many reservations one sweep cycle processes
const DefaultExpirationBatchSize = 100

// ReservationExpirationService reclaims reservations whose deadline passed.
// Each reservation is expired in its own transaction scope, so one failure
// does not block the rest of the batch and a crashed sweep simply retries the
// remainder on the next cycle.
type ReservationExpirationService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	batchSize      int
}

// ExpiredReservationStats summarizes one sweep cycle
type ExpiredReservationStats struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// NewReservationExpirationService creates a new ReservationExpirationService
func NewReservationExpirationService(scope TransactionScope, logger *zap.Logger) *ReservationExpirationService {
	return &ReservationExpirationService{
		scope:     scope,
		logger:    logger,
		batchSize: DefaultExpirationBatchSize,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *ReservationExpirationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBatchSize overrides the per-cycle batch size
func (s *ReservationExpirationService) SetBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

// ExpireReservations finds reservations past their deadline and returns each
// one's quantity to availability. Safe to run concurrently: every reservation
// is re-checked under its record's row lock before anything changes.
func (s *ReservationExpirationService) ExpireReservations(ctx context.Context) (*ExpiredReservationStats, error) {
	now := time.Now()
	var expired []inventory.Reservation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		expired, err = repos.ReservationRepo().FindExpired(ctx, now, s.batchSize)
		return err
	})
	if err != nil {
		return nil, err
	}

	stats := &ExpiredReservationStats{Scanned: len(expired)}
	for i := range expired {
		id := expired[i].ID
		switch err := s.expireOne(ctx, id, now); err {
		case nil:
			stats.Expired++
		case errAlreadySettled:
			stats.Skipped++
		default:
			stats.Failed++
			s.logger.Error("failed to expire reservation",
				zap.String("reservation_id", id.String()),
				zap.Error(err),
			)
		}
	}

	if stats.Expired > 0 || stats.Failed > 0 {
		s.logger.Info("reservation expiry sweep finished",
			zap.Int("scanned", stats.Scanned),
			zap.Int("expired", stats.Expired),
			zap.Int("skipped", stats.Skipped),
			zap.Int("failed", stats.Failed),
		)
	}
	return stats, nil
}

// errAlreadySettled marks a reservation another worker settled between the
// scan and the lock. Not an error, just a skip.
var errAlreadySettled = shared.NewDomainError("ALREADY_SETTLED", "reservation already settled")

func (s *ReservationExpirationService) expireOne(ctx context.Context, reservationID uuid.UUID, now time.Time) error {
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, reservation, err := s.lockPair(ctx, repos, reservationID)
		if err != nil {
			return err
		}
		if !reservation.IsExpired(now) {
			return errAlreadySettled
		}

		if err := reservation.MarkExpired(); err != nil {
			return err
		}
		before := record.Snapshot()
		if err := record.ApplyDelta(0, -reservation.Quantity); err != nil {
			return err
		}

		entry := inventory.NewMovementEntry(
			record, inventory.MovementTypeRelease, 0, -reservation.Quantity, before,
			nil, reservation.ReferenceType, reservation.ReferenceID, "",
			"reservation expired", reservation.CreatedBy,
		)
		if err := repos.MovementRepo().Create(ctx, entry); err != nil {
			return err
		}
		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return err
		}
		if err := repos.StockRecordRepo().Save(ctx, record); err != nil {
			return err
		}

		events = append(events, inventory.NewReservationExpiredEvent(record, reservation))
		return nil
	})
	if err != nil {
		return err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish expiry events", zap.Error(err))
		}
	}
	return nil
}

// lockPair re-fetches the reservation and locks its stock record. The record
// lock is taken first by ID so the sweep serializes with reserve, release and
// allocate on the same record.
func (s *ReservationExpirationService) lockPair(ctx context.Context, repos TransactionalRepositories, reservationID uuid.UUID) (*inventory.StockRecord, *inventory.Reservation, error) {
	reservation, err := repos.ReservationRepo().FindByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if !reservation.IsActive() {
		return nil, nil, errAlreadySettled
	}
	record, err := repos.StockRecordRepo().FindByIDForUpdate(ctx, reservation.StockRecordID)
	if err != nil {
		return nil, nil, err
	}
	// Re-read under the lock: the reservation may have been settled while we
	// waited for the record.
	reservation, err = repos.ReservationRepo().FindByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if !reservation.IsActive() {
		return nil, nil, errAlreadySettled
	}
	return record, reservation, nil
}
