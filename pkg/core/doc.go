// Package core provides the widget contract, the widget tree, and the
// contexts widgets receive while being laid out, drawn, and handed input.
//
// # Widgets and instances
//
// A Widget is any type implementing the capability set: Redraw, Layout,
// lifecycle hooks, HitTest, and the input callbacks. Embed Base to get the
// default implementations and override what you need:
//
//	type swatch struct {
//	    core.Base
//	    color graphics.Color
//	}
//
//	func (s *swatch) Redraw(ctx *core.GraphicsContext) {
//	    ctx.Surface().Fill(s.color)
//	}
//
//	func (s *swatch) Layout(available graphics.Constraints, ctx *core.LayoutContext) graphics.Size {
//	    return available.Constrain(graphics.Size{Width: 16, Height: 16})
//	}
//
// A WidgetInstance wraps one widget behind a mutex so it can be shared. It
// exists before it is mounted and may be retained by other goroutines.
//
// # The tree
//
// A Tree is the arena that owns mounted widgets. Each mounted widget gets a
// WidgetID that is never reused. ManagedWidget is a cheap (tree, id) handle
// used wherever code needs to point at a mounted widget.
//
// The tree also owns the hover, focus, and active registers and the mouse
// capture map. Register changes requested from inside widget callbacks are
// queued on the EventContext and applied once no widget lock is held, so
// the old holder is always notified before the new one.
//
// # Locking
//
// Dispatch holds at most one widget lock at a time. Layout and redraw are
// the exception: they recurse from parent to child while the parent's lock
// is held, so a pass holds one lock per level of the tree at once. Those
// locks are always acquired in ancestor-to-descendant order. Locking an ancestor while
// holding a descendant, or locking the same instance twice on one call
// stack, deadlocks: sync.Mutex is not reentrant.
//
// The tree and its registers are not designed for concurrent dispatch. Only
// the goroutine driving the window may dispatch events; other goroutines
// communicate through Value listeners.
package core
