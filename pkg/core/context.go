package core

import (
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	"github.com/go-drift/arbor/pkg/styles"
)

// maxPendingRounds bounds how many times ApplyPendingState re-runs when
// notifications keep requesting register changes.
const maxPendingRounds = 16

type registerChange struct {
	set    bool
	target optionalID
}

func (r *registerChange) request(target optionalID) {
	r.set = true
	r.target = target
}

// pendingState collects register changes requested while widget locks are
// held. It is shared by every context derived from one dispatch.
type pendingState struct {
	focus         registerChange
	active        registerChange
	hover         registerChange
	hoverLocation graphics.Point
	needsRedraw   bool
}

func (p *pendingState) take() pendingState {
	out := *p
	*p = pendingState{}
	return out
}

func (p *pendingState) empty() bool {
	return !p.focus.set && !p.active.set && !p.hover.set && !p.needsRedraw
}

// EventContext is passed to widget callbacks. It identifies the widget being
// called and queues register changes (focus, hover, active) until
// ApplyPendingState runs.
//
// Callers of the invocation methods (HitTest, MouseDown, and so on) must not
// already hold the target widget's lock.
type EventContext struct {
	widget  ManagedWidget
	pending *pendingState
}

// NewEventContext returns a context for m with its own pending state.
func NewEventContext(m ManagedWidget) *EventContext {
	return newEventContext(m, &pendingState{})
}

func newEventContext(m ManagedWidget, pending *pendingState) *EventContext {
	return &EventContext{widget: m, pending: pending}
}

// Widget returns the widget this context is for.
func (c *EventContext) Widget() ManagedWidget {
	return c.widget
}

// Tree returns the tree the widget is mounted in.
func (c *EventContext) Tree() *Tree {
	return c.widget.tree
}

// ForOther returns a context for another widget that shares this context's
// pending state.
func (c *EventContext) ForOther(m ManagedWidget) *EventContext {
	return newEventContext(m, c.pending)
}

// Parent returns the widget's parent.
func (c *EventContext) Parent() (ManagedWidget, bool) {
	return c.widget.Parent()
}

// LastLayout returns the widget's last layout rectangle.
func (c *EventContext) LastLayout() (graphics.Rect, bool) {
	return c.widget.LastLayout()
}

// Styles returns the styles in effect for the widget.
func (c *EventContext) Styles() styles.Styles {
	return c.widget.Styles()
}

// Focus requests keyboard focus for the widget.
func (c *EventContext) Focus() {
	c.pending.focus.request(someID(c.widget.id))
}

// FocusOn requests keyboard focus for m.
func (c *EventContext) FocusOn(m ManagedWidget) {
	c.pending.focus.request(someID(m.id))
}

// Blur gives up focus if the widget holds it.
func (c *EventContext) Blur() {
	if c.widget.Focused() || (c.pending.focus.set && c.pending.focus.target == someID(c.widget.id)) {
		c.pending.focus.request(optionalID{})
	}
}

// ClearFocus clears focus tree-wide.
func (c *EventContext) ClearFocus() {
	c.pending.focus.request(optionalID{})
}

// Activate makes the widget the active widget.
func (c *EventContext) Activate() {
	c.pending.active.request(someID(c.widget.id))
}

// Deactivate clears the active widget if it is this widget.
func (c *EventContext) Deactivate() {
	if c.widget.Active() || (c.pending.active.set && c.pending.active.target == someID(c.widget.id)) {
		c.pending.active.request(optionalID{})
	}
}

// SetHovered marks the widget as hovered at location, relative to its
// layout origin. The widget receives Hover when the change is applied.
func (c *EventContext) SetHovered(location graphics.Point) {
	c.pending.hover.request(someID(c.widget.id))
	c.pending.hoverLocation = location
}

// ClearHover clears hover tree-wide.
func (c *EventContext) ClearHover() {
	c.pending.hover.request(optionalID{})
}

// SetNeedsRedraw asks the host to redraw.
func (c *EventContext) SetNeedsRedraw() {
	c.pending.needsRedraw = true
}

// PushChild mounts w as the last child of the context's widget. Register
// changes requested by the child's Mounted hook join this context's pending
// state.
func (c *EventContext) PushChild(w *WidgetInstance) (ManagedWidget, error) {
	parent := c.widget.id
	return c.widget.tree.insert(w, &parent, nil, c.pending)
}

// ApplyPendingState applies queued register changes and delivers the
// resulting notifications. The previous holder of a register is always
// notified before the new one: Blur before Focus, Deactivate before
// Activate, Unhover before Hover. Notifications may queue further changes;
// those are applied in turn.
//
// It must be called with no widget locks held.
func (c *EventContext) ApplyPendingState() {
	tree := c.widget.tree
	if tree == nil {
		return
	}
	for round := 0; !c.pending.empty(); round++ {
		if round == maxPendingRounds {
			tree.log.Warn().Int("rounds", round).Msg("register changes did not settle")
			*c.pending = pendingState{}
			return
		}
		p := c.pending.take()
		redraw := p.needsRedraw

		if p.focus.set {
			prev := tree.swapRegister(focusedRegister, p.focus.target)
			if prev != p.focus.target {
				redraw = true
				tree.log.Debug().Bool("focused", p.focus.target.ok).Stringer("id", p.focus.target.id).Msg("focus changed")
				c.notify(prev, func(w Widget, ctx *EventContext) { w.Blur(ctx) })
				c.notify(p.focus.target, func(w Widget, ctx *EventContext) { w.Focus(ctx) })
			}
		}

		if p.active.set {
			prev := tree.swapRegister(activeRegister, p.active.target)
			if prev != p.active.target {
				redraw = true
				c.notify(prev, func(w Widget, ctx *EventContext) { w.Deactivate(ctx) })
				c.notify(p.active.target, func(w Widget, ctx *EventContext) { w.Activate(ctx) })
			}
		}

		if p.hover.set {
			prev := tree.swapRegister(hoveredRegister, p.hover.target)
			if prev != p.hover.target {
				redraw = true
				tree.log.Debug().Bool("hovered", p.hover.target.ok).Stringer("id", p.hover.target.id).Msg("hover changed")
				c.notify(prev, func(w Widget, ctx *EventContext) { w.Unhover(ctx) })
			}
			location := p.hoverLocation
			c.notify(p.hover.target, func(w Widget, ctx *EventContext) { w.Hover(location, ctx) })
		}

		if redraw {
			tree.setNeedsRedraw()
		}
	}
}

// notify locks the widget with the given id, if it is still mounted, and
// calls fn with a context sharing this pending state.
func (c *EventContext) notify(id optionalID, fn func(Widget, *EventContext)) {
	if !id.ok {
		return
	}
	m, ok := c.widget.tree.Widget(id.id)
	if !ok {
		return
	}
	ctx := c.ForOther(m)
	guard := m.Lock()
	defer guard.Release()
	fn(guard.Widget(), ctx)
}

func (c *EventContext) invoke(fn func(Widget)) {
	guard := c.widget.Lock()
	defer guard.Release()
	fn(guard.Widget())
}

// HitTest asks the widget whether location, relative to its layout origin,
// is inside it.
func (c *EventContext) HitTest(location graphics.Point) bool {
	var hit bool
	c.invoke(func(w Widget) { hit = w.HitTest(location, c) })
	return hit
}

// AcceptFocus asks the widget whether it can take keyboard focus.
func (c *EventContext) AcceptFocus() bool {
	var accept bool
	c.invoke(func(w Widget) { accept = w.AcceptFocus(c) })
	return accept
}

// MouseDown delivers a button press to the widget.
func (c *EventContext) MouseDown(location graphics.Point, device input.DeviceID, button input.MouseButton) EventHandling {
	var handled EventHandling
	c.invoke(func(w Widget) { handled = w.MouseDown(location, device, button, c) })
	return handled
}

// MouseDrag delivers a captured cursor move to the widget.
func (c *EventContext) MouseDrag(location graphics.Point, device input.DeviceID, button input.MouseButton) {
	c.invoke(func(w Widget) { w.MouseDrag(location, device, button, c) })
}

// MouseUp delivers a captured button release to the widget.
func (c *EventContext) MouseUp(location *graphics.Point, device input.DeviceID, button input.MouseButton) {
	c.invoke(func(w Widget) { w.MouseUp(location, device, button, c) })
}

// KeyboardInput delivers a key event to the widget.
func (c *EventContext) KeyboardInput(device input.DeviceID, event input.KeyEvent, synthetic bool) EventHandling {
	var handled EventHandling
	c.invoke(func(w Widget) { handled = w.KeyboardInput(device, event, synthetic, c) })
	return handled
}

// Ime delivers an input method event to the widget.
func (c *EventContext) Ime(event input.ImeEvent) EventHandling {
	var handled EventHandling
	c.invoke(func(w Widget) { handled = w.Ime(event, c) })
	return handled
}

// MouseWheel delivers a scroll event to the widget.
func (c *EventContext) MouseWheel(device input.DeviceID, delta input.ScrollDelta, phase input.TouchPhase) EventHandling {
	var handled EventHandling
	c.invoke(func(w Widget) { handled = w.MouseWheel(device, delta, phase, c) })
	return handled
}

// GraphicsContext is passed to Widget.Redraw. Its surface covers the
// widget's layout rectangle with the origin at the rectangle's top-left.
type GraphicsContext struct {
	*EventContext
	surface *graphics.Surface
}

// NewGraphicsContext returns a context that paints m onto surface.
func NewGraphicsContext(m ManagedWidget, surface *graphics.Surface) *GraphicsContext {
	return &GraphicsContext{EventContext: NewEventContext(m), surface: surface}
}

// Surface returns the widget's drawing surface.
func (g *GraphicsContext) Surface() *graphics.Surface {
	return g.surface
}

// Redraw records the widget in the tree's paint order and calls its Redraw.
func (g *GraphicsContext) Redraw() {
	g.widget.tree.notePainted(g.widget.id)
	guard := g.widget.Lock()
	defer guard.Release()
	guard.Widget().Redraw(g)
}

// RedrawChild paints child, which must be a descendant of the context's
// widget, onto the region of the surface covered by its layout. Children
// without a layout are skipped. Call it from the parent's Redraw; the
// parent's lock stays held while the child is painted.
func (g *GraphicsContext) RedrawChild(child ManagedWidget) {
	rect, ok := child.LastLayout()
	if !ok {
		return
	}
	origin := graphics.Point{}
	if own, ok := g.widget.LastLayout(); ok {
		origin = own.Origin()
	}
	region := g.surface.Region(rect.Translate(-origin.X, -origin.Y))
	childCtx := &GraphicsContext{EventContext: g.ForOther(child), surface: region}
	childCtx.Redraw()
}

// LayoutContext is passed to Widget.Layout.
//
// Unlike input dispatch, which never holds more than one widget lock, a
// layout pass nests them: Layout locks the child while the caller's widget
// is still locked. Widgets must not reach for an ancestor's lock from
// Layout.
type LayoutContext struct {
	*GraphicsContext
}

// NewLayoutContext returns a layout context for m. surface may be nil when
// no drawing target exists yet.
func NewLayoutContext(m ManagedWidget, surface *graphics.Surface) *LayoutContext {
	return &LayoutContext{GraphicsContext: NewGraphicsContext(m, surface)}
}

// Layout forgets child's previous descendant layouts, then calls its
// Layout with available and returns the size it chose. The parent's lock
// stays held while the child is laid out.
func (l *LayoutContext) Layout(child ManagedWidget, available graphics.Constraints) graphics.Size {
	l.widget.tree.ResetChildLayouts(child.id)
	childCtx := &LayoutContext{GraphicsContext: &GraphicsContext{EventContext: l.ForOther(child), surface: l.surface}}
	guard := child.Lock()
	defer guard.Release()
	return guard.Widget().Layout(available, childCtx)
}

// SetChildLayout places child at rect, relative to the context widget's
// origin. The rectangle becomes absolute when the context widget itself is
// placed by its parent or by Place.
func (l *LayoutContext) SetChildLayout(child ManagedWidget, rect graphics.Rect) {
	l.widget.tree.place(child.id, rect)
}

// Place records the context widget's own rectangle in window coordinates
// and resolves the child rectangles set relative to it. Hosts call it for
// the root after its Layout returns.
func (l *LayoutContext) Place(rect graphics.Rect) {
	l.widget.tree.place(l.widget.id, rect)
}
