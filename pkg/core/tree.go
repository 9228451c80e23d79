package core

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	"github.com/go-drift/arbor/pkg/styles"
)

// WidgetID identifies a mounted widget. IDs increase monotonically and are
// never reused within a Tree.
type WidgetID uint64

func (id WidgetID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// Host receives redraw requests raised by the tree and its contexts.
type Host interface {
	SetNeedsRedraw()
}

// Capture is one entry of the mouse capture map.
type Capture struct {
	Device input.DeviceID
	Button input.MouseButton
	Widget WidgetID
}

type optionalID struct {
	id WidgetID
	ok bool
}

func someID(id WidgetID) optionalID {
	return optionalID{id: id, ok: true}
}

type node struct {
	instance  *WidgetInstance
	parent    optionalID
	children  []WidgetID
	depth     int
	layout    graphics.Rect
	hasLayout bool
	// placed is set once descendant rectangles are absolute. Until then
	// they are relative to this node's origin.
	placed bool
	styles styles.Styles
}

// Tree is the arena owning every mounted widget of one window, along with
// the hover, focus, active, and capture registers.
//
// All methods are safe to call from any goroutine, but widget callbacks are
// never invoked while the tree's own lock is held.
type Tree struct {
	mu         sync.Mutex
	nodes      map[WidgetID]*node
	byInstance map[*WidgetInstance]WidgetID
	roots      []WidgetID
	nextID     WidgetID

	hovered optionalID
	focused optionalID
	active  optionalID
	capture map[input.DeviceID]map[input.MouseButton]WidgetID

	renderOrder []WidgetID
	singleRoot  bool

	host Host
	log  zerolog.Logger
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger sets the logger used for tree diagnostics.
func WithLogger(log zerolog.Logger) TreeOption {
	return func(t *Tree) {
		t.log = log
	}
}

// WithHost sets the receiver of redraw requests.
func WithHost(h Host) TreeOption {
	return func(t *Tree) {
		t.host = h
	}
}

// WithSingleRoot makes inserting a second root fail with
// errors.ErrMultipleRoots.
func WithSingleRoot() TreeOption {
	return func(t *Tree) {
		t.singleRoot = true
	}
}

// NewTree creates an empty tree.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		nodes:      make(map[WidgetID]*node),
		byInstance: make(map[*WidgetInstance]WidgetID),
		capture:    make(map[input.DeviceID]map[input.MouseButton]WidgetID),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetHost replaces the receiver of redraw requests.
func (t *Tree) SetHost(h Host) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.host = h
}

// Logger returns the tree's logger.
func (t *Tree) Logger() zerolog.Logger {
	return t.log
}

func (t *Tree) setNeedsRedraw() {
	t.mu.Lock()
	h := t.host
	t.mu.Unlock()
	if h != nil {
		h.SetNeedsRedraw()
	}
}

// Insert mounts w under parent, or as a new root when parent is nil, and
// calls its Mounted hook. The new widget is appended after any existing
// children. Inserting under an id that is not mounted fails with
// errors.ErrUnknownParent and creates nothing. Trees created WithSingleRoot
// reject a second root with errors.ErrMultipleRoots.
//
// Register changes requested by Mounted are applied before Insert returns,
// so the caller must not hold any widget lock.
func (t *Tree) Insert(w *WidgetInstance, parent *WidgetID) (ManagedWidget, error) {
	pending := &pendingState{}
	managed, err := t.insert(w, parent, nil, pending)
	if err != nil {
		return ManagedWidget{}, err
	}
	newEventContext(managed, pending).ApplyPendingState()
	return managed, nil
}

// InsertRoot mounts w as a new root.
func (t *Tree) InsertRoot(w *WidgetInstance) (ManagedWidget, error) {
	return t.Insert(w, nil)
}

// InsertChild mounts w as the last child of parent.
func (t *Tree) InsertChild(w *WidgetInstance, parent WidgetID) (ManagedWidget, error) {
	return t.Insert(w, &parent)
}

// InsertAfter mounts w as the next sibling of sibling. Roots have no
// siblings in this sense; inserting after a root fails with
// errors.ErrNoParent.
func (t *Tree) InsertAfter(w *WidgetInstance, sibling WidgetID) (ManagedWidget, error) {
	pending := &pendingState{}
	managed, err := t.insert(w, nil, &sibling, pending)
	if err != nil {
		return ManagedWidget{}, err
	}
	newEventContext(managed, pending).ApplyPendingState()
	return managed, nil
}

func (t *Tree) insert(w *WidgetInstance, parent, after *WidgetID, pending *pendingState) (ManagedWidget, error) {
	const op = "core.Tree.Insert"

	t.mu.Lock()
	if _, mounted := t.byInstance[w]; mounted {
		t.mu.Unlock()
		return ManagedWidget{}, &errors.ArborError{Op: op, Kind: errors.KindTree, Err: errors.ErrAlreadyMounted, Widget: w.TypeName()}
	}

	var parentID optionalID
	switch {
	case after != nil:
		sib, ok := t.nodes[*after]
		if !ok {
			t.mu.Unlock()
			return ManagedWidget{}, &errors.ArborError{Op: op, Kind: errors.KindTree, Err: errors.ErrStaleWidget, Widget: w.TypeName()}
		}
		if !sib.parent.ok {
			t.mu.Unlock()
			return ManagedWidget{}, &errors.ArborError{Op: op, Kind: errors.KindTree, Err: errors.ErrNoParent, Widget: w.TypeName()}
		}
		parentID = sib.parent
	case parent != nil:
		if _, ok := t.nodes[*parent]; !ok {
			t.mu.Unlock()
			return ManagedWidget{}, &errors.ArborError{Op: op, Kind: errors.KindTree, Err: errors.ErrUnknownParent, Widget: w.TypeName()}
		}
		parentID = someID(*parent)
	case t.singleRoot && len(t.roots) > 0:
		t.mu.Unlock()
		return ManagedWidget{}, &errors.ArborError{Op: op, Kind: errors.KindTree, Err: errors.ErrMultipleRoots, Widget: w.TypeName()}
	}

	id := t.nextID
	t.nextID++

	n := &node{instance: w, parent: parentID}
	if parentID.ok {
		p := t.nodes[parentID.id]
		n.depth = p.depth + 1
		index := len(p.children)
		if after != nil {
			index = slices.Index(p.children, *after) + 1
		}
		p.children = slices.Insert(p.children, index, id)
	} else {
		t.roots = append(t.roots, id)
	}
	t.nodes[id] = n
	t.byInstance[w] = id
	t.mu.Unlock()

	t.log.Debug().Stringer("id", id).Str("widget", w.TypeName()).Msg("mounted")

	managed := ManagedWidget{tree: t, id: id, instance: w}
	func() {
		defer errors.Scope{Op: "core.Tree.Mounted", Kind: errors.KindTree, Widget: w.TypeName()}.Recover()
		ctx := newEventContext(managed, pending)
		guard := w.Lock()
		defer guard.Release()
		guard.Widget().Mounted(ctx)
	}()
	return managed, nil
}

// Remove unmounts id and every descendant. Registers pointing at removed
// widgets are cleared in the same operation. Unmounted is then called once
// per removed widget, descendants before ancestors. Removing an id that is
// not mounted does nothing.
//
// The caller must not hold a lock on any removed widget.
func (t *Tree) Remove(id WidgetID) {
	removed := t.detach(id)
	if len(removed) == 0 {
		return
	}

	t.log.Debug().Stringer("id", id).Int("count", len(removed)).Msg("unmounted")

	for _, m := range slices.Backward(removed) {
		func() {
			defer errors.Scope{Op: "core.Tree.Unmounted", Kind: errors.KindTree, Widget: m.instance.TypeName()}.Recover()
			ctx := newEventContext(m, &pendingState{})
			guard := m.instance.Lock()
			defer guard.Release()
			guard.Widget().Unmounted(ctx)
		}()
	}
	t.setNeedsRedraw()
}

// detach removes id and its descendants from the arena, returning them in
// depth-first pre-order.
func (t *Tree) detach(id WidgetID) []ManagedWidget {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return nil
	}

	if n.parent.ok {
		if p, ok := t.nodes[n.parent.id]; ok {
			p.children = slices.DeleteFunc(p.children, func(c WidgetID) bool { return c == id })
		}
	} else {
		t.roots = slices.DeleteFunc(t.roots, func(r WidgetID) bool { return r == id })
	}

	var removed []ManagedWidget
	stack := []WidgetID{id}
	gone := make(map[WidgetID]bool)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cn, ok := t.nodes[current]
		if !ok {
			continue
		}
		delete(t.nodes, current)
		delete(t.byInstance, cn.instance)
		gone[current] = true
		removed = append(removed, ManagedWidget{tree: t, id: current, instance: cn.instance})
		for _, child := range slices.Backward(cn.children) {
			stack = append(stack, child)
		}
	}

	if t.hovered.ok && gone[t.hovered.id] {
		t.hovered = optionalID{}
	}
	if t.focused.ok && gone[t.focused.id] {
		t.focused = optionalID{}
	}
	if t.active.ok && gone[t.active.id] {
		t.active = optionalID{}
	}
	for device, buttons := range t.capture {
		for button, captured := range buttons {
			if gone[captured] {
				delete(buttons, button)
			}
		}
		if len(buttons) == 0 {
			delete(t.capture, device)
		}
	}
	t.renderOrder = slices.DeleteFunc(t.renderOrder, func(r WidgetID) bool { return gone[r] })
	return removed
}

// Clear removes every root and its descendants.
func (t *Tree) Clear() {
	for _, root := range t.Roots() {
		t.Remove(root)
	}
}

// Len returns the number of mounted widgets.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// Contains reports whether id is mounted.
func (t *Tree) Contains(id WidgetID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.nodes[id]
	return ok
}

// IDs returns every mounted id in ascending order.
func (t *Tree) IDs() []WidgetID {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]WidgetID, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Widget returns a handle to id, if it is mounted.
func (t *Tree) Widget(id WidgetID) (ManagedWidget, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return ManagedWidget{}, false
	}
	return ManagedWidget{tree: t, id: id, instance: n.instance}, true
}

// Lookup returns the handle of a mounted instance.
func (t *Tree) Lookup(w *WidgetInstance) (ManagedWidget, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.byInstance[w]
	if !ok {
		return ManagedWidget{}, false
	}
	return ManagedWidget{tree: t, id: id, instance: w}, true
}

// Root returns the first root, if any.
func (t *Tree) Root() (ManagedWidget, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.roots) == 0 {
		return ManagedWidget{}, false
	}
	id := t.roots[0]
	return ManagedWidget{tree: t, id: id, instance: t.nodes[id].instance}, true
}

// Roots returns the ids of every root in insertion order.
func (t *Tree) Roots() []WidgetID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.roots)
}

// Parent returns the parent of id.
func (t *Tree) Parent(id WidgetID) (WidgetID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok || !n.parent.ok {
		return 0, false
	}
	return n.parent.id, true
}

// Children returns the children of id in insertion order.
func (t *Tree) Children(id WidgetID) []WidgetID {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// Depth returns the distance from id to its root.
func (t *Tree) Depth(id WidgetID) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return 0, false
	}
	return n.depth, true
}

// SetLayout records the rectangle id was laid out at, in window
// coordinates. Other nodes are not touched.
func (t *Tree) SetLayout(id WidgetID, rect graphics.Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	n.layout = rect
	n.hasLayout = true
}

// place records rect for id and resolves descendant layouts against it.
// Descendants laid out since the last ResetChildLayouts(id) hold rects
// relative to id's origin; they are shifted by rect's origin the first
// time, and by the change in origin on later calls.
func (t *Tree) place(id WidgetID, rect graphics.Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	dx, dy := rect.Left, rect.Top
	if n.placed && n.hasLayout {
		dx -= n.layout.Left
		dy -= n.layout.Top
	}
	n.layout = rect
	n.hasLayout = true
	n.placed = true
	if dx == 0 && dy == 0 {
		return
	}

	stack := slices.Clone(n.children)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cn, ok := t.nodes[current]
		if !ok || !cn.hasLayout {
			continue
		}
		cn.layout = cn.layout.Translate(dx, dy)
		stack = append(stack, cn.children...)
	}
}

// Layout returns the last rectangle id was laid out at. It reports false
// until the first layout pass for id completes.
func (t *Tree) Layout(id WidgetID) (graphics.Rect, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok || !n.hasLayout {
		return graphics.Rect{}, false
	}
	return n.layout, true
}

// ResetChildLayouts forgets the layout of every descendant of id.
func (t *Tree) ResetChildLayouts(id WidgetID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	n.placed = false
	stack := slices.Clone(n.children)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cn, ok := t.nodes[current]; ok {
			cn.hasLayout = false
			cn.placed = false
			cn.layout = graphics.Rect{}
			stack = append(stack, cn.children...)
		}
	}
}

// AttachStyles merges s into the styles attached to id.
func (t *Tree) AttachStyles(id WidgetID, s styles.Styles) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.nodes[id]; ok {
		n.styles = n.styles.Merge(s)
	}
}

// Styles returns the styles in effect for id: those attached to its
// ancestors overlaid by its own, nearest wins.
func (t *Tree) Styles(id WidgetID) styles.Styles {
	t.mu.Lock()
	defer t.mu.Unlock()
	var chain []*node
	for current, ok := t.nodes[id]; ok; {
		chain = append(chain, current)
		if !current.parent.ok {
			break
		}
		current, ok = t.nodes[current.parent.id]
	}
	var effective styles.Styles
	for _, n := range slices.Backward(chain) {
		effective = effective.Merge(n.styles)
	}
	return effective
}

// ResetRenderOrder forgets the order widgets were painted in. It must be
// called once at the start of every redraw; painting records the new order.
func (t *Tree) ResetRenderOrder() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderOrder = t.renderOrder[:0]
}

func (t *Tree) notePainted(id WidgetID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderOrder = append(t.renderOrder, id)
}

// paintOrderLocked returns the paint order: the recorded order from the last
// redraw, or tree pre-order if nothing has been painted since the last reset.
func (t *Tree) paintOrderLocked() []WidgetID {
	if len(t.renderOrder) > 0 {
		return slices.Clone(t.renderOrder)
	}
	order := make([]WidgetID, 0, len(t.nodes))
	stack := slices.Clone(t.roots)
	slices.Reverse(stack)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := t.nodes[current]
		if !ok {
			continue
		}
		order = append(order, current)
		for _, child := range slices.Backward(n.children) {
			stack = append(stack, child)
		}
	}
	return order
}

// WidgetsAtPoint yields the widgets whose last layout contains p, front to
// back: children before their ancestors and later siblings before earlier
// ones. The sequence is lazy; layouts are checked as it is consumed.
func (t *Tree) WidgetsAtPoint(p graphics.Point) iter.Seq[ManagedWidget] {
	return func(yield func(ManagedWidget) bool) {
		t.mu.Lock()
		order := t.paintOrderLocked()
		t.mu.Unlock()

		for _, id := range slices.Backward(order) {
			t.mu.Lock()
			n, ok := t.nodes[id]
			hit := ok && n.hasLayout && n.layout.Contains(p)
			var instance *WidgetInstance
			if hit {
				instance = n.instance
			}
			t.mu.Unlock()
			if !hit {
				continue
			}
			if !yield(ManagedWidget{tree: t, id: id, instance: instance}) {
				return
			}
		}
	}
}

// Hovered returns the widget directly beneath the cursor.
func (t *Tree) Hovered() (WidgetID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hovered.id, t.hovered.ok
}

// IsHovered reports whether id or one of its descendants is hovered.
func (t *Tree) IsHovered(id WidgetID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hovered.ok {
		return false
	}
	for current := t.hovered; current.ok; {
		if current.id == id {
			return true
		}
		n, ok := t.nodes[current.id]
		if !ok {
			return false
		}
		current = n.parent
	}
	return false
}

// Focused returns the widget with keyboard focus.
func (t *Tree) Focused() (WidgetID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.focused.id, t.focused.ok
}

// Active returns the active (pressed) widget.
func (t *Tree) Active() (WidgetID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active.id, t.active.ok
}

// swapRegister stores next in the register selected by pick and returns the
// previous holder. Unmounted ids are stored as empty.
func (t *Tree) swapRegister(pick func(*Tree) *optionalID, next optionalID) optionalID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if next.ok {
		if _, ok := t.nodes[next.id]; !ok {
			next = optionalID{}
		}
	}
	reg := pick(t)
	prev := *reg
	*reg = next
	return prev
}

func hoveredRegister(t *Tree) *optionalID { return &t.hovered }
func focusedRegister(t *Tree) *optionalID { return &t.focused }
func activeRegister(t *Tree) *optionalID  { return &t.active }

// SetCapture routes drag and release events for (device, button) to id.
func (t *Tree) SetCapture(device input.DeviceID, button input.MouseButton, id WidgetID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[id]; !ok {
		return
	}
	buttons := t.capture[device]
	if buttons == nil {
		buttons = make(map[input.MouseButton]WidgetID)
		t.capture[device] = buttons
	}
	buttons[button] = id
}

// Captured returns the widget capturing (device, button).
func (t *Tree) Captured(device input.DeviceID, button input.MouseButton) (WidgetID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.capture[device][button]
	return id, ok
}

// Captures returns every capture held for device, ordered by button.
func (t *Tree) Captures(device input.DeviceID) []Capture {
	t.mu.Lock()
	defer t.mu.Unlock()
	buttons := t.capture[device]
	out := make([]Capture, 0, len(buttons))
	for button, id := range buttons {
		out = append(out, Capture{Device: device, Button: button, Widget: id})
	}
	slices.SortFunc(out, func(a, b Capture) int { return int(a.Button) - int(b.Button) })
	return out
}

// HasCapture reports whether any button of device is captured.
func (t *Tree) HasCapture(device input.DeviceID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.capture[device]) > 0
}

// ReleaseCapture removes the (device, button) capture and returns the widget
// that held it. The device entry is dropped once no buttons remain.
func (t *Tree) ReleaseCapture(device input.DeviceID, button input.MouseButton) (WidgetID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	buttons, ok := t.capture[device]
	if !ok {
		return 0, false
	}
	id, ok := buttons[button]
	if !ok {
		return 0, false
	}
	delete(buttons, button)
	if len(buttons) == 0 {
		delete(t.capture, device)
	}
	return id, true
}

// CaptureCount returns the number of (device, button) captures held.
func (t *Tree) CaptureCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, buttons := range t.capture {
		count += len(buttons)
	}
	return count
}

// preOrder returns every mounted id in tree pre-order.
func (t *Tree) preOrder() []WidgetID {
	t.mu.Lock()
	defer t.mu.Unlock()
	saved := t.renderOrder
	t.renderOrder = nil
	order := t.paintOrderLocked()
	t.renderOrder = saved
	return order
}
