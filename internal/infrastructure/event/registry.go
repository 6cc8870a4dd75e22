package event

import (
	"slices"
	"sync"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
)

// allEvents keys handlers subscribed without an event type
const allEvents = ""

// HandlerRegistry maps event types to subscribed handlers
type HandlerRegistry struct {
	mu     sync.RWMutex
	byType map[string][]shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

// Register subscribes a handler to eventTypes, or to every event when none
// are given. A handler is registered at most once per type.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{allEvents}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, eventType := range eventTypes {
		if !slices.Contains(r.byType[eventType], handler) {
			r.byType[eventType] = append(r.byType[eventType], handler)
		}
	}
}

// Unregister removes a handler from every event type
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for eventType, handlers := range r.byType {
		handlers = slices.DeleteFunc(slices.Clone(handlers), func(h shared.EventHandler) bool { return h == handler })
		if len(handlers) == 0 {
			delete(r.byType, eventType)
			continue
		}
		r.byType[eventType] = handlers
	}
}

// GetHandlers returns the handlers for eventType followed by the handlers
// subscribed to every event. The result is a copy.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if eventType == allEvents {
		return slices.Clone(r.byType[allEvents])
	}
	return slices.Concat(r.byType[eventType], r.byType[allEvents])
}
