package persistence

import (
	"context"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements the append-only movement ledger using
// GORM. Entries are immutable, there is no update or delete path.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a single ledger entry
func (r *GormMovementRepository) Create(ctx context.Context, entry *inventory.MovementEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateBatch appends multiple ledger entries
func (r *GormMovementRepository) CreateBatch(ctx context.Context, entries []*inventory.MovementEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindByStockRecord lists entries for a stock record, newest first
func (r *GormMovementRepository) FindByStockRecord(ctx context.Context, stockRecordID uuid.UUID, filter shared.Filter) ([]inventory.MovementEntry, error) {
	query := r.db.WithContext(ctx).Model(&inventory.MovementEntry{}).
		Where("stock_record_id = ?", stockRecordID).
		Order("performed_at DESC, created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []inventory.MovementEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByReference lists entries recorded against a reference document
func (r *GormMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType, referenceID string) ([]inventory.MovementEntry, error) {
	var entries []inventory.MovementEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, referenceType, referenceID).
		Order("performed_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByStockRecord counts entries for a stock record
func (r *GormMovementRepository) CountByStockRecord(ctx context.Context, stockRecordID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.MovementEntry{}).
		Where("stock_record_id = ?", stockRecordID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormMovementRepository implements MovementRepository
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
