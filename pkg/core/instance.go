package core

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// WidgetInstance is a shareable handle to one widget. The widget is guarded
// by a mutex; use Lock to access it.
//
// Instances compare by identity: two handles are the same widget only if
// they are the same pointer.
type WidgetInstance struct {
	mu       sync.Mutex
	widget   Widget
	poisoned atomic.Bool

	linkMu    sync.Mutex
	nextFocus *Value[*WidgetInstance]
}

// NewWidgetInstance wraps w in a new instance.
func NewWidgetInstance(w Widget) *WidgetInstance {
	return &WidgetInstance{widget: w}
}

// WithNextFocus links the widget that should receive focus after this one.
// The link may change over time; traversal reads it each time. Reverse tab
// order is derived from the same links.
func (i *WidgetInstance) WithNextFocus(next *Value[*WidgetInstance]) *WidgetInstance {
	i.linkMu.Lock()
	defer i.linkMu.Unlock()
	i.nextFocus = next
	return i
}

// WithNextFocusWidget links a fixed next-focus widget.
func (i *WidgetInstance) WithNextFocusWidget(next *WidgetInstance) *WidgetInstance {
	return i.WithNextFocus(NewValue(next))
}

// NextFocus returns the currently linked next-focus widget, if any.
func (i *WidgetInstance) NextFocus() *WidgetInstance {
	i.linkMu.Lock()
	next := i.nextFocus
	i.linkMu.Unlock()
	if next == nil {
		return nil
	}
	return next.Get()
}

// Lock acquires exclusive access to the widget. Hold the guard briefly and
// release it with a deferred Release:
//
//	guard := instance.Lock()
//	defer guard.Release()
//
// Locking an instance that is already locked on the same call stack
// deadlocks.
//
// If a previous holder panicked, the instance is marked poisoned but the
// lock is still granted: the widget state is assumed usable.
func (i *WidgetInstance) Lock() *WidgetGuard {
	i.mu.Lock()
	return &WidgetGuard{instance: i}
}

// Poisoned reports whether a panic unwound through a guard on this instance.
func (i *WidgetInstance) Poisoned() bool {
	return i.poisoned.Load()
}

// ClearPoison resets the poisoned flag.
func (i *WidgetInstance) ClearPoison() {
	i.poisoned.Store(false)
}

// TypeName returns the dynamic type of the wrapped widget, for logging.
// It does not lock the instance.
func (i *WidgetInstance) TypeName() string {
	return reflect.TypeOf(i.widget).String()
}

func (i *WidgetInstance) String() string {
	return fmt.Sprintf("WidgetInstance(%s)", i.TypeName())
}

// WidgetGuard is exclusive access to a widget, obtained from Lock.
type WidgetGuard struct {
	instance *WidgetInstance
	released bool
}

// Widget returns the guarded widget. It must not be retained after Release.
func (g *WidgetGuard) Widget() Widget {
	return g.instance.widget
}

// Poisoned reports whether the instance was poisoned when or since it was
// locked.
func (g *WidgetGuard) Poisoned() bool {
	return g.instance.Poisoned()
}

// Release unlocks the widget. It is idempotent and meant to be deferred: if
// it runs while the goroutine is panicking, the instance is marked poisoned,
// the lock is released, and the panic continues.
func (g *WidgetGuard) Release() {
	if r := recover(); r != nil {
		g.instance.poisoned.Store(true)
		g.unlock()
		panic(r)
	}
	g.unlock()
}

func (g *WidgetGuard) unlock() {
	if g.released {
		return
	}
	g.released = true
	g.instance.mu.Unlock()
}

// Downcast returns the guarded widget as T, if it has that type.
//
//	guard := managed.Lock()
//	defer guard.Release()
//	if button, ok := core.Downcast[*widgets.Button](guard); ok {
//	    ...
//	}
func Downcast[T Widget](g *WidgetGuard) (T, bool) {
	w, ok := g.Widget().(T)
	return w, ok
}
