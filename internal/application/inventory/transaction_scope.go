package inventory

import (
	"context"

	"github.com/erp/inventory/internal/domain/inventory"
)

// TransactionScope provides transactional access to the engine's repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Row locks taken through the repositories are held until
// the scope ends.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// StockRecordRepo returns the stock record repository scoped to the current transaction
	StockRecordRepo() inventory.StockRecordRepository
	// ReservationRepo returns the reservation repository scoped to the current transaction
	ReservationRepo() inventory.ReservationRepository
	// TransactionRepo returns the inventory transaction repository scoped to the current transaction
	TransactionRepo() inventory.TransactionRepository
	// MovementRepo returns the movement ledger repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
	// LotRepo returns the lot repository scoped to the current transaction
	LotRepo() inventory.LotRepository
	// TransferRepo returns the transfer repository scoped to the current transaction
	TransferRepo() inventory.TransferRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	stockRecordRepo inventory.StockRecordRepository
	reservationRepo inventory.ReservationRepository
	transactionRepo inventory.TransactionRepository
	movementRepo    inventory.MovementRepository
	lotRepo         inventory.LotRepository
	transferRepo    inventory.TransferRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockRecordRepo inventory.StockRecordRepository,
	reservationRepo inventory.ReservationRepository,
	transactionRepo inventory.TransactionRepository,
	movementRepo inventory.MovementRepository,
	lotRepo inventory.LotRepository,
	transferRepo inventory.TransferRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockRecordRepo: stockRecordRepo,
		reservationRepo: reservationRepo,
		transactionRepo: transactionRepo,
		movementRepo:    movementRepo,
		lotRepo:         lotRepo,
		transferRepo:    transferRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockRecordRepo returns the stock record repository.
func (s *NoOpTransactionScope) StockRecordRepo() inventory.StockRecordRepository {
	return s.stockRecordRepo
}

// ReservationRepo returns the reservation repository.
func (s *NoOpTransactionScope) ReservationRepo() inventory.ReservationRepository {
	return s.reservationRepo
}

// TransactionRepo returns the inventory transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() inventory.TransactionRepository {
	return s.transactionRepo
}

// MovementRepo returns the movement ledger repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

// LotRepo returns the lot repository.
func (s *NoOpTransactionScope) LotRepo() inventory.LotRepository {
	return s.lotRepo
}

// TransferRepo returns the transfer repository.
func (s *NoOpTransactionScope) TransferRepo() inventory.TransferRepository {
	return s.transferRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
