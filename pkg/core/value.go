package core

import "sync"

// Value is a thread-safe reactive cell. Listeners run synchronously on the
// goroutine that calls Set, after the cell's lock has been released.
//
// Values are how goroutines other than the UI goroutine communicate with
// widgets: they Set a value, and listeners installed by the window mark it
// as needing a redraw.
type Value[T any] struct {
	mu        sync.RWMutex
	value     T
	equal     func(a, b T) bool
	listeners map[int]func(T)
	nextID    int
}

// NewValue creates a cell holding initial. Every Set notifies listeners.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// NewValueWithEquality creates a cell that skips notification when equal
// reports the new value is the same as the current one.
func NewValueWithEquality[T any](initial T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{value: initial, equal: equal}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores value and notifies listeners.
func (v *Value[T]) Set(value T) {
	v.Update(func(T) T { return value })
}

// Update replaces the value with fn(current) and notifies listeners.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	old := v.value
	next := fn(old)
	if v.equal != nil && v.equal(old, next) {
		v.mu.Unlock()
		return
	}
	v.value = next
	listeners := make([]func(T), 0, len(v.listeners))
	for _, l := range v.listeners {
		listeners = append(listeners, l)
	}
	v.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}

// AddListener registers fn to be called after every change. The returned
// function removes the listener.
func (v *Value[T]) AddListener(fn func(T)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.listeners == nil {
		v.listeners = make(map[int]func(T))
	}
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}
