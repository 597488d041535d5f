// Package events provides a small typed publish/subscribe channel used for
// state-change and frame notifications. Delivery is synchronous and in
// subscription order: Emit invokes every listener before returning, so a
// listener always observes an already-committed value and never a stale
// intermediate.
package events

import (
	"slices"
	"sync"
)

// Subscription is the handle returned by Subscribe. Unsubscribe removes the
// listener; it is safe to call more than once and from inside the listener
// itself.
type Subscription struct {
	once sync.Once
	stop func()
}

// Unsubscribe removes the listener from the dispatcher.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.stop)
}

type handler[T any] struct {
	id int
	fn func(T)
}

// Dispatcher fans a value out to all current listeners. The zero value is
// ready to use.
type Dispatcher[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers []handler[T]
}

// Subscribe registers fn and returns its unsubscribe handle.
func (d *Dispatcher[T]) Subscribe(fn func(T)) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.handlers = append(d.handlers, handler[T]{id: id, fn: fn})
	return &Subscription{stop: func() { d.remove(id) }}
}

func (d *Dispatcher[T]) remove(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = slices.DeleteFunc(d.handlers, func(h handler[T]) bool {
		return h.id == id
	})
}

// Emit delivers value to every listener subscribed at the time of the call,
// synchronously and in subscription order. Listeners added or removed by a
// running listener take effect for the next Emit.
func (d *Dispatcher[T]) Emit(value T) {
	d.mu.Lock()
	current := slices.Clone(d.handlers)
	d.mu.Unlock()

	for _, h := range current {
		h.fn(value)
	}
}

// Len returns the number of active listeners.
func (d *Dispatcher[T]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}
