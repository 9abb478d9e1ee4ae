package event

import (
	"context"
	"testing"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func TestHandlerRegistry(t *testing.T) {
	t.Run("typed subscriptions match their types only", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := &recordingHandler{}

		registry.Register(handler, "StockReserved", "ReservationReleased")

		assert.Len(t, registry.GetHandlers("StockReserved"), 1)
		assert.Len(t, registry.GetHandlers("ReservationReleased"), 1)
		assert.Empty(t, registry.GetHandlers("TransferShipped"))
	})

	t.Run("registering without types subscribes to everything", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := &recordingHandler{}

		registry.Register(handler)

		assert.Len(t, registry.GetHandlers("StockReserved"), 1)
		assert.Len(t, registry.GetHandlers("anything-at-all"), 1)
	})

	t.Run("typed and wildcard subscribers both receive a match", func(t *testing.T) {
		registry := NewHandlerRegistry()
		typed := &recordingHandler{}
		wildcard := &recordingHandler{}

		registry.Register(typed, "StockReserved")
		registry.Register(wildcard)

		assert.Len(t, registry.GetHandlers("StockReserved"), 2)

		handlers := registry.GetHandlers("TransferReceived")
		assert.Len(t, handlers, 1)
		assert.Same(t, wildcard, handlers[0].(*recordingHandler))
	})

	t.Run("unregister drops the handler everywhere", func(t *testing.T) {
		registry := NewHandlerRegistry()
		first := &recordingHandler{}
		second := &recordingHandler{}

		registry.Register(first, "StockReserved")
		registry.Register(second, "StockReserved")
		registry.Register(first)

		registry.Unregister(first)

		handlers := registry.GetHandlers("StockReserved")
		assert.Len(t, handlers, 1)
		assert.Same(t, second, handlers[0].(*recordingHandler))
		assert.Empty(t, registry.GetHandlers("TransferShipped"))
	})
}
