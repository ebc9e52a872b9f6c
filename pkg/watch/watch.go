package watch

import (
	"slices"
	"sync"
)

// Unsubscribe removes a previously registered subscriber. Calling it
// more than once is harmless.
type Unsubscribe func()

// Value holds a single authoritative value of type T and notifies
// subscribers whenever it is replaced. The value is always replaced
// wholesale, never mutated in place, so subscribers can hold on to a
// snapshot safely.
//
// All methods are safe for concurrent use. Notifications for a given
// Set are delivered sequentially, in subscription order, before Set
// returns; subscribers observe updates in the order they were applied.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	nextID  int
	subs    map[int]func(T)
}

// NewValue creates a Value seeded with the given initial state.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[int]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set replaces the current value and notifies every subscriber with the
// new value. Callbacks run on the caller's goroutine; a callback must
// not call back into the same Value or it will deadlock.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.current = next
	// Snapshot the callbacks so an unsubscribe from another goroutine
	// during notification cannot corrupt the iteration.
	callbacks := make([]func(T), 0, len(v.subs))
	ids := make([]int, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		callbacks = append(callbacks, v.subs[id])
	}
	v.mu.Unlock()

	for _, cb := range callbacks {
		cb(next)
	}
}

// Subscribe registers a callback invoked on every subsequent Set. The
// callback is not invoked with the current value at subscription time;
// use Get for the initial snapshot.
func (v *Value[T]) Subscribe(cb func(T)) Unsubscribe {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = cb
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

// Len reports the number of active subscribers.
func (v *Value[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}
