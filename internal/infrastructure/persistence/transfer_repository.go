package persistence

import (
	"context"
	"errors"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer with its items
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	var transfer inventory.StockTransfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByIDForUpdate finds a transfer with its items, locking the transfer row
// until the surrounding transaction ends. Item rows are not locked, they are
// only ever written while the transfer row lock is held.
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	var transfer inventory.StockTransfer
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByNumber finds a transfer by its transfer number
func (r *GormTransferRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*inventory.StockTransfer, error) {
	var transfer inventory.StockTransfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND transfer_number = ?", tenantID, number).
		First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindForTenant lists transfers for a tenant
func (r *GormTransferRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockTransfer, error) {
	var transfers []inventory.StockTransfer
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockTransfer{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter,
		TransferSortFields,
	)
	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Create inserts a new transfer with its items
func (r *GormTransferRepository) Create(ctx context.Context, transfer *inventory.StockTransfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

// Save updates a transfer and its items
func (r *GormTransferRepository) Save(ctx context.Context, transfer *inventory.StockTransfer) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(transfer).Error
}

// Ensure GormTransferRepository implements TransferRepository
var _ inventory.TransferRepository = (*GormTransferRepository)(nil)
