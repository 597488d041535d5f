package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitDeliversInSubscriptionOrder(t *testing.T) {
	var d Dispatcher[int]
	var order []string

	d.Subscribe(func(v int) { order = append(order, "first") })
	d.Subscribe(func(v int) { order = append(order, "second") })
	d.Subscribe(func(v int) { order = append(order, "third") })

	d.Emit(1)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	var d Dispatcher[string]
	var got []string

	sub := d.Subscribe(func(v string) { got = append(got, v) })
	d.Emit("a")
	sub.Unsubscribe()
	d.Emit("b")

	assert.Equal(t, []string{"a"}, got)
	assert.Zero(t, d.Len())

	// Unsubscribe is idempotent.
	sub.Unsubscribe()
}

func TestUnsubscribeFromInsideListener(t *testing.T) {
	var d Dispatcher[int]
	var calls int

	var sub *Subscription
	sub = d.Subscribe(func(v int) {
		calls++
		sub.Unsubscribe()
	})

	d.Emit(1)
	d.Emit(2)
	assert.Equal(t, 1, calls)
}

func TestSubscribeDuringEmitTakesEffectNextEmit(t *testing.T) {
	var d Dispatcher[int]
	var lateCalls int

	d.Subscribe(func(v int) {
		if v == 1 {
			d.Subscribe(func(int) { lateCalls++ })
		}
	})

	d.Emit(1)
	assert.Zero(t, lateCalls)
	d.Emit(2)
	assert.Equal(t, 1, lateCalls)
}
