package event

import (
	"sync"

	"github.com/erp/inventory/internal/domain/shared"
)

// wildcardType keys handlers that receive every event
const wildcardType = ""

// HandlerRegistry tracks which handlers want which event types. Safe for
// concurrent use, publishes read-lock while subscriptions write-lock.
type HandlerRegistry struct {
	mu            sync.RWMutex
	subscriptions map[string][]shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		subscriptions: make(map[string][]shared.EventHandler),
	}
}

// Register subscribes a handler to the given event types. With no types
// the handler receives every event.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		eventTypes = []string{wildcardType}
	}
	for _, eventType := range eventTypes {
		r.subscriptions[eventType] = append(r.subscriptions[eventType], handler)
	}
}

// Unregister drops a handler from every subscription
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventType, handlers := range r.subscriptions {
		kept := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(r.subscriptions, eventType)
		} else {
			r.subscriptions[eventType] = kept
		}
	}
}

// GetHandlers returns the handlers subscribed to the event type, wildcard
// subscribers included
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.subscriptions[eventType]
	wildcard := r.subscriptions[wildcardType]

	result := make([]shared.EventHandler, 0, len(typed)+len(wildcard))
	result = append(result, typed...)
	result = append(result, wildcard...)
	return result
}
