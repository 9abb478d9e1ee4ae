package inventory

import (
	"context"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// ReorderNotifier is notified when a record drops to its reorder point.
// Implementations forward the alert to purchasing, messaging, etc.
type ReorderNotifier interface {
	NotifyLowStock(ctx context.Context, event *inventory.StockBelowReorderPointEvent) error
}

// LowStockHandler reacts to StockBelowReorderPoint events. Without a notifier
// it only logs, which is enough for operators tailing the log in development.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier ReorderNotifier
}

// NewLowStockHandler creates a new LowStockHandler
func NewLowStockHandler(logger *zap.Logger, notifier ReorderNotifier) *LowStockHandler {
	return &LowStockHandler{
		logger:   logger,
		notifier: notifier,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowReorderPoint}
}

// Handle processes a StockBelowReorderPoint event
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*inventory.StockBelowReorderPointEvent)
	if !ok {
		h.logger.Warn("unexpected event payload",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
		)
		return nil
	}

	h.logger.Warn("stock below reorder point",
		zap.String("stock_record_id", lowStock.StockRecordID.String()),
		zap.String("product_id", lowStock.ProductID.String()),
		zap.String("location_id", lowStock.LocationID.String()),
		zap.Int64("quantity_available", lowStock.QuantityAvailable),
		zap.Int64("reorder_point", lowStock.ReorderPoint),
		zap.Int64("reorder_quantity", lowStock.ReorderQuantity),
	)

	if h.notifier != nil {
		if err := h.notifier.NotifyLowStock(ctx, lowStock); err != nil {
			h.logger.Error("failed to notify low stock",
				zap.String("stock_record_id", lowStock.StockRecordID.String()),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

// IdempotentHandler wraps an event handler with duplicate suppression keyed
// on the event ID. Redelivered events are acknowledged without reprocessing.
type IdempotentHandler struct {
	inner  shared.EventHandler
	store  shared.IdempotencyStore
	config shared.IdempotencyConfig
	logger *zap.Logger
}

// NewIdempotentHandler wraps the given handler
func NewIdempotentHandler(inner shared.EventHandler, store shared.IdempotencyStore, config shared.IdempotencyConfig, logger *zap.Logger) *IdempotentHandler {
	return &IdempotentHandler{
		inner:  inner,
		store:  store,
		config: config,
		logger: logger,
	}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.inner.EventTypes()
}

// Handle marks the event processed before delegating. If marking fails the
// event is processed anyway: duplicate handling is preferable to dropping.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.config.Enabled && h.store != nil {
		fresh, err := h.store.MarkProcessed(ctx, event.EventID().String(), h.config.TTL)
		if err != nil {
			h.logger.Warn("idempotency check failed, processing anyway",
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		} else if !fresh {
			return nil
		}
	}
	return h.inner.Handle(ctx, event)
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
var _ shared.EventHandler = (*IdempotentHandler)(nil)
