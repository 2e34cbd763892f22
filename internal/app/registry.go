package app

import (
	"fmt"
	"sync"

	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/justyntemme/dirindex/internal/events"
)

// Slot names a logical event binding point.
type Slot string

const (
	SlotActivate         Slot = "on-activate"
	SlotSelectionChanged Slot = "on-selection-changed"
	SlotIndexClick       Slot = "on-index-click"
)

var knownSlots = map[Slot]bool{
	SlotActivate:         true,
	SlotSelectionChanged: true,
	SlotIndexClick:       true,
}

// HandlerRegistry holds at most one live subscription per slot.
type HandlerRegistry struct {
	mu   sync.Mutex
	live map[Slot]events.Token
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{live: make(map[Slot]events.Token)}
}

// Bind revokes the token held for slot, then calls subscribe and keeps the
// token it returns. The old token is always revoked before the new one
// exists, so the two never fire for the same event.
func (r *HandlerRegistry) Bind(slot Slot, subscribe func() events.Token) error {
	if !knownSlots[slot] {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.live[slot]; ok {
		old.Revoke()
		delete(r.live, slot)
	}
	tok := subscribe()
	if tok == nil {
		return nil
	}
	r.live[slot] = tok
	debug.Log(debug.NAV, "bound %s", slot)
	return nil
}

// Revoke drops the subscription for one slot.
func (r *HandlerRegistry) Revoke(slot Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.live[slot]; ok {
		old.Revoke()
		delete(r.live, slot)
	}
}

// RevokeAll drops every subscription. Used on session teardown.
func (r *HandlerRegistry) RevokeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slot, tok := range r.live {
		tok.Revoke()
		delete(r.live, slot)
	}
	debug.Log(debug.NAV, "revoked all handlers")
}

// Live reports whether slot has a live subscription.
func (r *HandlerRegistry) Live(slot Slot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok, ok := r.live[slot]
	return ok && tok.Live()
}

// LiveCount returns the number of slots with a live subscription.
func (r *HandlerRegistry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, tok := range r.live {
		if tok.Live() {
			n++
		}
	}
	return n
}
