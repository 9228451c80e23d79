package core

import (
	"fmt"
	"sync"

	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
)

// eventLog collects callback names in call order.
type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// testWidget records lifecycle and input callbacks.
type testWidget struct {
	Base
	name        string
	log         *eventLog
	hit         bool
	acceptFocus bool
	handles     bool
	size        graphics.Size
	children    []*WidgetRef
	childRects  []graphics.Rect
	onMounted   func(ctx *EventContext)
	onMouseDown func(ctx *EventContext)
}

func newTestWidget(name string, log *eventLog) *testWidget {
	return &testWidget{name: name, log: log}
}

func (w *testWidget) Redraw(ctx *GraphicsContext) {
	w.log.add("%s.redraw", w.name)
	for _, child := range w.children {
		if m, ok := child.Mounted(); ok {
			ctx.RedrawChild(m)
		}
	}
}

func (w *testWidget) Layout(available graphics.Constraints, ctx *LayoutContext) graphics.Size {
	for i, child := range w.children {
		m, ok := child.Mounted()
		if !ok {
			continue
		}
		ctx.Layout(m, available)
		if i < len(w.childRects) {
			ctx.SetChildLayout(m, w.childRects[i])
		}
	}
	return available.Constrain(w.size)
}

func (w *testWidget) Mounted(ctx *EventContext) {
	w.log.add("%s.mounted", w.name)
	for _, child := range w.children {
		_, _ = child.Mount(ctx)
	}
	if w.onMounted != nil {
		w.onMounted(ctx)
	}
}

func (w *testWidget) Unmounted(*EventContext) {
	w.log.add("%s.unmounted", w.name)
}

func (w *testWidget) HitTest(graphics.Point, *EventContext) bool {
	return w.hit
}

func (w *testWidget) Hover(location graphics.Point, _ *EventContext) {
	w.log.add("%s.hover(%g,%g)", w.name, location.X, location.Y)
}

func (w *testWidget) Unhover(*EventContext) {
	w.log.add("%s.unhover", w.name)
}

func (w *testWidget) AcceptFocus(*EventContext) bool {
	return w.acceptFocus
}

func (w *testWidget) Focus(*EventContext) {
	w.log.add("%s.focus", w.name)
}

func (w *testWidget) Blur(*EventContext) {
	w.log.add("%s.blur", w.name)
}

func (w *testWidget) Activate(*EventContext) {
	w.log.add("%s.activate", w.name)
}

func (w *testWidget) Deactivate(*EventContext) {
	w.log.add("%s.deactivate", w.name)
}

func (w *testWidget) MouseDown(location graphics.Point, _ input.DeviceID, _ input.MouseButton, ctx *EventContext) EventHandling {
	w.log.add("%s.mouse_down(%g,%g)", w.name, location.X, location.Y)
	if w.onMouseDown != nil {
		w.onMouseDown(ctx)
	}
	if w.handles {
		return Handled
	}
	return Ignored
}

func (w *testWidget) String() string {
	return w.name
}

// build mounts root and returns handles by name.
func build(t *Tree, root *testWidget) map[string]ManagedWidget {
	managed, err := t.InsertRoot(NewWidgetInstance(root))
	if err != nil {
		panic(err)
	}
	out := map[string]ManagedWidget{root.name: managed}
	var walk func(ManagedWidget)
	walk = func(m ManagedWidget) {
		for _, child := range m.Children() {
			guard := child.Lock()
			w := guard.Widget().(*testWidget)
			guard.Release()
			out[w.name] = child
			walk(child)
		}
	}
	walk(managed)
	return out
}

type redrawCounter struct {
	mu    sync.Mutex
	count int
}

func (r *redrawCounter) SetNeedsRedraw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func (r *redrawCounter) get() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
