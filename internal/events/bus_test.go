package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribeEmitRevoke(t *testing.T) {
	b := NewBus()
	var got []int

	tok := b.Subscribe("on-activate", func(i int) { got = append(got, i) })
	assert.True(t, tok.Live())
	assert.Equal(t, 1, b.Count("on-activate"))

	assert.Equal(t, 1, b.Emit("on-activate", 3))
	assert.Equal(t, 0, b.Emit("other", 1))

	tok.Revoke()
	tok.Revoke()
	assert.False(t, tok.Live())
	assert.Equal(t, 0, b.Count("on-activate"))
	assert.Equal(t, 0, b.Emit("on-activate", 4))
	assert.Equal(t, []int{3}, got)
}

func TestBus_RevokeMiddleKeepsOrder(t *testing.T) {
	b := NewBus()
	var order []string

	b.Subscribe("s", func(int) { order = append(order, "a") })
	mid := b.Subscribe("s", func(int) { order = append(order, "b") })
	b.Subscribe("s", func(int) { order = append(order, "c") })

	mid.Revoke()
	assert.Equal(t, 2, b.Emit("s", 0))
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestBus_ResubscribeDuringEmit(t *testing.T) {
	b := NewBus()
	calls := 0

	var tok Token
	var handler func(int)
	handler = func(int) {
		calls++
		tok.Revoke()
		tok = b.Subscribe("s", handler)
	}
	tok = b.Subscribe("s", handler)

	assert.Equal(t, 1, b.Emit("s", 0))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, b.Count("s"))

	assert.Equal(t, 1, b.Emit("s", 0))
	assert.Equal(t, 2, calls)
}

func TestBus_RevokedBeforeTurnIsSkipped(t *testing.T) {
	b := NewBus()
	var second Token
	secondCalled := false

	b.Subscribe("s", func(int) { second.Revoke() })
	second = b.Subscribe("s", func(int) { secondCalled = true })

	assert.Equal(t, 1, b.Emit("s", 0))
	assert.False(t, secondCalled)
}
