// Package events is a small in-process publish/subscribe bus that stands in
// for a GUI toolkit's signal connections. Each subscription returns a Token
// that can be revoked independently.
package events

import (
	"sync"
	"sync/atomic"
)

// Token is a revocable subscription handle.
type Token interface {
	// Revoke disconnects the subscription. It is safe to call more than once.
	Revoke()
	// Live reports whether the subscription still receives events.
	Live() bool
}

// Bus dispatches integer payloads (list positions) to per-slot listeners.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[string][]*listener
}

type listener struct {
	id   uint64
	slot string
	fn   func(int)
	live atomic.Bool
	bus  *Bus
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string][]*listener)}
}

// Subscribe connects fn to slot.
func (b *Bus) Subscribe(slot string, fn func(int)) Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	l := &listener{id: b.nextID, slot: slot, fn: fn, bus: b}
	l.live.Store(true)
	b.listeners[slot] = append(b.listeners[slot], l)
	return l
}

// Emit delivers arg to every live listener on slot, in subscription order,
// and returns how many were invoked. Listeners may subscribe or revoke during
// delivery; a listener revoked before its turn is skipped and one added
// during delivery waits for the next Emit.
func (b *Bus) Emit(slot string, arg int) int {
	b.mu.Lock()
	snapshot := append([]*listener(nil), b.listeners[slot]...)
	b.mu.Unlock()

	n := 0
	for _, l := range snapshot {
		if !l.live.Load() {
			continue
		}
		l.fn(arg)
		n++
	}
	return n
}

// Count returns the number of live listeners on slot.
func (b *Bus) Count(slot string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[slot])
}

func (l *listener) Revoke() {
	if !l.live.CompareAndSwap(true, false) {
		return
	}
	b := l.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.listeners[l.slot]
	for i, other := range list {
		if other.id == l.id {
			b.listeners[l.slot] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.listeners[l.slot]) == 0 {
		delete(b.listeners, l.slot)
	}
}

func (l *listener) Live() bool {
	return l.live.Load()
}
