package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Lot, error) {
	var lot inventory.Lot
	if err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByLotNumber finds a lot on a stock record by its lot number
func (r *GormLotRepository) FindByLotNumber(ctx context.Context, stockRecordID uuid.UUID, lotNumber string) (*inventory.Lot, error) {
	var lot inventory.Lot
	if err := r.db.WithContext(ctx).
		Where("stock_record_id = ? AND lot_number = ?", stockRecordID, lotNumber).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindConsumable finds active lots with available quantity on a record,
// ordered by received date ascending
func (r *GormLotRepository) FindConsumable(ctx context.Context, stockRecordID uuid.UUID) ([]*inventory.Lot, error) {
	var lots []*inventory.Lot
	if err := r.db.WithContext(ctx).
		Where("stock_record_id = ? AND status = ? AND quantity_available > 0",
			stockRecordID, inventory.LotStatusActive).
		Order("received_date ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindExpiring finds active lots expiring before the given instant
func (r *GormLotRepository) FindExpiring(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]*inventory.Lot, error) {
	var lots []*inventory.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND expiry_date IS NOT NULL AND expiry_date < ?",
			tenantID, inventory.LotStatusActive, before).
		Order("expiry_date ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Create inserts a new lot
func (r *GormLotRepository) Create(ctx context.Context, lot *inventory.Lot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

// Save updates a lot
func (r *GormLotRepository) Save(ctx context.Context, lot *inventory.Lot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// SaveAll updates multiple lots
func (r *GormLotRepository) SaveAll(ctx context.Context, lots []*inventory.Lot) error {
	for _, lot := range lots {
		if err := r.Save(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormLotRepository implements LotRepository
var _ inventory.LotRepository = (*GormLotRepository)(nil)
