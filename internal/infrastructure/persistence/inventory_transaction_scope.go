package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/domain/inventory"
)

// GormTransactionScope runs a unit of work inside one database transaction.
// Every repository handed to the callback shares that transaction, so a
// commit or reservation either lands completely or not at all.
type GormTransactionScope struct {
	db *gorm.DB
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*txRepositories)(nil)
)

func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute opens a transaction, invokes fn with transaction-bound
// repositories and commits. Any error from fn rolls everything back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepositories{tx: tx})
	})
}

// txRepositories builds each repository on the live transaction handle
type txRepositories struct {
	tx *gorm.DB
}

func (r *txRepositories) StockRecordRepo() inventory.StockRecordRepository {
	return NewGormStockRecordRepository(r.tx)
}

func (r *txRepositories) ReservationRepo() inventory.ReservationRepository {
	return NewGormReservationRepository(r.tx)
}

func (r *txRepositories) TransactionRepo() inventory.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

func (r *txRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *txRepositories) LotRepo() inventory.LotRepository {
	return NewGormLotRepository(r.tx)
}

func (r *txRepositories) TransferRepo() inventory.TransferRepository {
	return NewGormTransferRepository(r.tx)
}
