package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	a := &recordingHandler{}
	b := &recordingHandler{}
	wild := &recordingHandler{}

	r.Register(a, "SaleCreated", "PartyBalanceChanged")
	r.Register(a, "SaleCreated")
	r.Register(b, "SaleCreated")
	r.Register(wild)

	handlers := r.GetHandlers("SaleCreated")
	assert.Len(t, handlers, 3)
	assert.Same(t, a, handlers[0])
	assert.Same(t, wild, handlers[2])

	r.Unregister(a)
	assert.Len(t, r.GetHandlers("SaleCreated"), 2)
	assert.Len(t, r.GetHandlers("PartyBalanceChanged"), 1)

	r.Unregister(wild)
	assert.Empty(t, r.GetHandlers("PartyBalanceChanged"))
}
