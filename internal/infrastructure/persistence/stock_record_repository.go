package persistence

import (
	"context"
	"errors"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRecordRepository implements StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// FindByID finds a stock record by its ID
func (r *GormStockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockRecord, error) {
	var record inventory.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByIDForUpdate finds a stock record and takes an exclusive row lock.
// Must be called inside a transaction scope.
func (r *GormStockRecordRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockRecord, error) {
	var record inventory.StockRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByIDsForUpdate locks multiple records one by one in the order of the
// given IDs. Locking sequentially in caller-sorted order keeps concurrent
// units deadlock-free.
func (r *GormStockRecordRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*inventory.StockRecord, error) {
	records := make([]*inventory.StockRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// FindByKey finds a record by its product/variant/location identity
func (r *GormStockRecordRepository) FindByKey(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*inventory.StockRecord, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID)
	if variantID != nil {
		query = query.Where("variant_id = ?", *variantID)
	} else {
		query = query.Where("variant_id IS NULL")
	}

	var record inventory.StockRecord
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByLocation finds all records at a location
func (r *GormStockRecordRepository) FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID, filter shared.Filter) ([]inventory.StockRecord, error) {
	var records []inventory.StockRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockRecord{}).
			Where("tenant_id = ? AND location_id = ?", tenantID, locationID),
		filter,
		StockRecordSortFields,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByProducts finds all records for the given products in one query,
// optionally narrowed to one location
func (r *GormStockRecordRepository) FindByProducts(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID, locationID *uuid.UUID) ([]inventory.StockRecord, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Model(&inventory.StockRecord{}).
		Where("tenant_id = ? AND product_id IN ?", tenantID, productIDs)
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}

	var records []inventory.StockRecord
	if err := query.Order("product_id, location_id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindBelowReorderPoint finds records whose available quantity has reached
// the reorder point, recomputed from live counters
func (r *GormStockRecordRepository) FindBelowReorderPoint(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]inventory.StockRecord, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockRecord{}).
		Where("tenant_id = ? AND reorder_point > 0 AND (quantity_on_hand - quantity_reserved) <= reorder_point", tenantID)
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}

	var records []inventory.StockRecord
	if err := query.Order("location_id, product_id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetOrCreate gets an existing record or creates a zeroed one
func (r *GormStockRecordRepository) GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*inventory.StockRecord, error) {
	record, err := r.FindByKey(ctx, tenantID, productID, variantID, locationID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record = inventory.NewStockRecord(tenantID, productID, variantID, locationID, strategy.CostMethodAverage)

	// ON CONFLICT handles the race where another unit creates the same key
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "variant_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).
		Create(record).Error; err != nil {
		return nil, err
	}

	if record.ID == uuid.Nil {
		return r.FindByKey(ctx, tenantID, productID, variantID, locationID)
	}
	return record, nil
}

// Save creates or updates a stock record
func (r *GormStockRecordRepository) Save(ctx context.Context, record *inventory.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockRecordRepository) SaveWithLock(ctx context.Context, record *inventory.StockRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"quantity_on_hand":  record.QuantityOnHand,
			"quantity_reserved": record.QuantityReserved,
			"reorder_point":     record.ReorderPoint,
			"reorder_quantity":  record.ReorderQuantity,
			"average_cost":      record.AverageCost,
			"cost_method":       record.CostMethod,
			"last_movement_at":  record.LastMovementAt,
			"version":           record.Version,
			"updated_at":        record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFilter applies pagination and whitelisted ordering shared by the list
// queries. Sort fields outside the whitelist fall back to created_at.
func applyFilter(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	field := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormStockRecordRepository implements StockRecordRepository
var _ inventory.StockRecordRepository = (*GormStockRecordRepository)(nil)
