package window

import (
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
)

// bubble calls fn on start and then on each ancestor until one handles the
// event. It returns the widget that handled it.
func bubble(ctx *core.EventContext, start core.ManagedWidget, fn func(*core.EventContext) core.EventHandling) (core.ManagedWidget, bool) {
	visited := make(map[core.WidgetID]bool)
	current, ok := start, !start.IsZero()
	for ok && !visited[current.ID()] {
		visited[current.ID()] = true
		if fn(ctx.ForOther(current)).IsHandled() {
			return current, true
		}
		current, ok = current.Parent()
	}
	return core.ManagedWidget{}, false
}

// relative converts a window position into m's coordinate space.
func relative(m core.ManagedWidget, position graphics.Point) (graphics.Point, bool) {
	rect, ok := m.LastLayout()
	if !ok {
		return graphics.Point{}, false
	}
	return position.Sub(rect.Origin()), true
}

func (w *Window) widgetOrRoot(id core.WidgetID, ok bool) core.ManagedWidget {
	if ok {
		if m, mounted := w.tree.Widget(id); mounted {
			return m
		}
	}
	return w.root
}

func (w *Window) focusedOrRoot() core.ManagedWidget {
	return w.widgetOrRoot(w.tree.Focused())
}

func (w *Window) hoveredOrRoot() core.ManagedWidget {
	return w.widgetOrRoot(w.tree.Hovered())
}

func (w *Window) newContext() *core.EventContext {
	return core.NewEventContext(w.root)
}

// KeyboardInput delivers a key event to the focused widget, or the root,
// bubbling until handled. Unhandled Tab presses move focus and an unhandled
// primary+W release requests a close.
func (w *Window) KeyboardInput(device input.DeviceID, event input.KeyEvent, synthetic bool) {
	defer w.dispatchScope("window.KeyboardInput").Recover()
	if w.root.IsZero() {
		return
	}
	ctx := w.newContext()
	_, handled := bubble(ctx, w.focusedOrRoot(), func(target *core.EventContext) core.EventHandling {
		return target.KeyboardInput(device, event, synthetic)
	})

	if !handled {
		switch {
		case w.settings.TabNavigation && event.Code == input.KeyTab && event.State.IsPressed() &&
			!event.Modifiers.Has(input.ModControl) && !event.Modifiers.Has(input.ModAlt):
			ctx.AdvanceFocus(!event.Modifiers.Has(input.ModShift))
		case w.settings.CloseShortcut && event.Code == input.KeyW && !event.State.IsPressed() &&
			event.Modifiers.Primary():
			w.requestClose()
		}
	}
	ctx.ApplyPendingState()
}

// Ime delivers an input method event to the focused widget, or the root.
func (w *Window) Ime(event input.ImeEvent) {
	defer w.dispatchScope("window.Ime").Recover()
	if w.root.IsZero() {
		return
	}
	ctx := w.newContext()
	bubble(ctx, w.focusedOrRoot(), func(target *core.EventContext) core.EventHandling {
		return target.Ime(event)
	})
	ctx.ApplyPendingState()
}

// CursorMoved records the cursor position. Widgets capturing a button of
// device receive MouseDrag; otherwise the frontmost widget whose HitTest
// passes becomes hovered.
func (w *Window) CursorMoved(device input.DeviceID, position graphics.Point) {
	defer w.dispatchScope("window.CursorMoved").Recover()
	w.cursor, w.hasCursor = position, true
	if w.root.IsZero() {
		return
	}
	ctx := w.newContext()

	if captures := w.tree.Captures(device); len(captures) > 0 {
		for _, capture := range captures {
			m, ok := w.tree.Widget(capture.Widget)
			if !ok {
				continue
			}
			location, ok := relative(m, position)
			if !ok {
				continue
			}
			ctx.ForOther(m).MouseDrag(location, device, capture.Button)
		}
		ctx.ApplyPendingState()
		return
	}

	hovered := false
	for m := range w.tree.WidgetsAtPoint(position) {
		location, ok := relative(m, position)
		if !ok {
			continue
		}
		target := ctx.ForOther(m)
		if target.HitTest(location) {
			target.SetHovered(location)
			hovered = true
			break
		}
	}
	if !hovered {
		ctx.ClearHover()
	}
	ctx.ApplyPendingState()
}

// CursorLeft clears hover and forgets the cursor position.
func (w *Window) CursorLeft(device input.DeviceID) {
	defer w.dispatchScope("window.CursorLeft").Recover()
	w.hasCursor = false
	if w.root.IsZero() {
		return
	}
	ctx := w.newContext()
	ctx.ClearHover()
	ctx.ApplyPendingState()
}

// MouseInput handles a button press or release.
//
// A press clears focus and delivers Blur before anything else, then
// hit-tests at the last cursor position and bubbles MouseDown from the
// frontmost hit widget. The widget that handles
// it captures (device, button) and becomes active; widgets that want focus
// request it from MouseDown. A release ends the capture and delivers
// MouseUp to the capturing widget.
func (w *Window) MouseInput(device input.DeviceID, state input.ElementState, button input.MouseButton) {
	defer w.dispatchScope("window.MouseInput").Recover()
	if w.root.IsZero() {
		return
	}
	ctx := w.newContext()
	if state.IsPressed() {
		w.mouseDown(ctx, device, button)
	} else {
		w.mouseUp(ctx, device, button)
	}
	ctx.ApplyPendingState()
}

func (w *Window) mouseDown(ctx *core.EventContext, device input.DeviceID, button input.MouseButton) {
	ctx.ClearFocus()
	ctx.ApplyPendingState()
	if !w.hasCursor {
		return
	}
	position := w.cursor

	var target core.ManagedWidget
	for m := range w.tree.WidgetsAtPoint(position) {
		location, ok := relative(m, position)
		if ok && ctx.ForOther(m).HitTest(location) {
			target = m
			break
		}
	}
	if target.IsZero() {
		return
	}

	handler, handled := bubble(ctx, target, func(current *core.EventContext) core.EventHandling {
		location, ok := relative(current.Widget(), position)
		if !ok {
			return core.Ignored
		}
		return current.MouseDown(location, device, button)
	})
	if !handled {
		return
	}
	w.tree.SetCapture(device, button, handler.ID())
	ctx.ForOther(handler).Activate()
	w.log.Debug().Stringer("widget", handler).Uint64("device", uint64(device)).Stringer("button", button).Msg("capture")
}

func (w *Window) mouseUp(ctx *core.EventContext, device input.DeviceID, button input.MouseButton) {
	id, ok := w.tree.ReleaseCapture(device, button)
	if !ok {
		return
	}
	m, ok := w.tree.Widget(id)
	if !ok {
		return
	}
	w.log.Debug().Stringer("widget", m).Uint64("device", uint64(device)).Stringer("button", button).Msg("release")

	var location *graphics.Point
	if w.hasCursor {
		if rel, ok := relative(m, w.cursor); ok {
			location = &rel
		}
	}
	target := ctx.ForOther(m)
	target.Deactivate()
	target.MouseUp(location, device, button)
}

// MouseWheel delivers a scroll event to the hovered widget, or the root,
// bubbling until handled.
func (w *Window) MouseWheel(device input.DeviceID, delta input.ScrollDelta, phase input.TouchPhase) {
	defer w.dispatchScope("window.MouseWheel").Recover()
	if w.root.IsZero() {
		return
	}
	ctx := w.newContext()
	bubble(ctx, w.hoveredOrRoot(), func(target *core.EventContext) core.EventHandling {
		return target.MouseWheel(device, delta, phase)
	})
	ctx.ApplyPendingState()
}
