package core

import (
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
)

// EventHandling reports whether a widget consumed an event. Ignored events
// bubble to the widget's parent.
type EventHandling int

const (
	// Ignored lets the event continue to the parent.
	Ignored EventHandling = iota
	// Handled stops propagation; the widget becomes the event's handler.
	Handled
)

// IsHandled reports whether h is Handled.
func (h EventHandling) IsHandled() bool {
	return h == Handled
}

func (h EventHandling) String() string {
	if h == Handled {
		return "handled"
	}
	return "ignored"
}

// Widget is the capability set every widget implements.
//
// Redraw and Layout must be implemented by every widget. Everything else has
// a default in Base. Locations passed to input callbacks are relative to the
// widget's last layout origin.
type Widget interface {
	// Redraw paints the widget using its resolved geometry. It must not
	// mutate tree state. Children painted through ctx.RedrawChild are
	// locked while this widget's lock is still held, so Redraw must never
	// lock an ancestor.
	Redraw(ctx *GraphicsContext)

	// Layout returns the widget's size for the available space. It may lay
	// out and position children through ctx. As with Redraw, ctx.Layout
	// locks the child while this widget stays locked: two widget locks
	// are held at once, always ancestor before descendant.
	Layout(available graphics.Constraints, ctx *LayoutContext) graphics.Size

	// Mounted is called once, when the widget is inserted into a tree.
	Mounted(ctx *EventContext)

	// Unmounted is called once, when the widget is removed from its tree.
	Unmounted(ctx *EventContext)

	// HitTest reports whether the widget should respond to the mouse at
	// location. Widgets are not interactive unless they override it.
	HitTest(location graphics.Point, ctx *EventContext) bool

	// Hover is called while the cursor is over the widget.
	Hover(location graphics.Point, ctx *EventContext)

	// Unhover is called when the widget stops being hovered.
	Unhover(ctx *EventContext)

	// AcceptFocus is consulted by keyboard focus traversal. Returning false
	// skips the widget.
	AcceptFocus(ctx *EventContext) bool

	// Focus is called when the widget gains keyboard focus.
	Focus(ctx *EventContext)

	// Blur is called when the widget loses keyboard focus.
	Blur(ctx *EventContext)

	// Activate is called when the widget becomes the active widget.
	Activate(ctx *EventContext)

	// Deactivate is called when the widget stops being the active widget.
	Deactivate(ctx *EventContext)

	// MouseDown handles a button press. A Handled result captures the
	// (device, button) pair: the widget receives MouseDrag and MouseUp
	// until the button is released.
	MouseDown(location graphics.Point, device input.DeviceID, button input.MouseButton, ctx *EventContext) EventHandling

	// MouseDrag is called when the cursor moves while the widget holds a
	// capture for device.
	MouseDrag(location graphics.Point, device input.DeviceID, button input.MouseButton, ctx *EventContext)

	// MouseUp is called when a captured button is released. location is nil
	// when the widget has no layout to be relative to.
	MouseUp(location *graphics.Point, device input.DeviceID, button input.MouseButton, ctx *EventContext)

	// KeyboardInput handles a key event.
	KeyboardInput(device input.DeviceID, event input.KeyEvent, synthetic bool, ctx *EventContext) EventHandling

	// Ime handles an input method event.
	Ime(event input.ImeEvent, ctx *EventContext) EventHandling

	// MouseWheel handles a scroll event.
	MouseWheel(device input.DeviceID, delta input.ScrollDelta, phase input.TouchPhase, ctx *EventContext) EventHandling
}

// Base provides default implementations for every optional Widget method.
// Embed it in a widget struct:
//
//	type Divider struct {
//	    core.Base
//	}
type Base struct{}

func (Base) Mounted(*EventContext)   {}
func (Base) Unmounted(*EventContext) {}

// HitTest returns false: widgets are invisible to the mouse by default.
func (Base) HitTest(graphics.Point, *EventContext) bool { return false }

func (Base) Hover(graphics.Point, *EventContext) {}
func (Base) Unhover(*EventContext)               {}

// AcceptFocus returns false.
func (Base) AcceptFocus(*EventContext) bool { return false }

func (Base) Focus(*EventContext)      {}
func (Base) Blur(*EventContext)       {}
func (Base) Activate(*EventContext)   {}
func (Base) Deactivate(*EventContext) {}

func (Base) MouseDown(graphics.Point, input.DeviceID, input.MouseButton, *EventContext) EventHandling {
	return Ignored
}

func (Base) MouseDrag(graphics.Point, input.DeviceID, input.MouseButton, *EventContext) {}

func (Base) MouseUp(*graphics.Point, input.DeviceID, input.MouseButton, *EventContext) {}

func (Base) KeyboardInput(input.DeviceID, input.KeyEvent, bool, *EventContext) EventHandling {
	return Ignored
}

func (Base) Ime(input.ImeEvent, *EventContext) EventHandling {
	return Ignored
}

func (Base) MouseWheel(input.DeviceID, input.ScrollDelta, input.TouchPhase, *EventContext) EventHandling {
	return Ignored
}
