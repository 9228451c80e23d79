package core

import (
	"fmt"

	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/styles"
)

// ManagedWidget is a handle to a mounted widget: the tree it lives in, its
// id, and its instance. Handles are values and may be copied freely. A
// handle whose widget has been removed keeps its id but every tree query
// through it reports nothing.
type ManagedWidget struct {
	tree     *Tree
	id       WidgetID
	instance *WidgetInstance
}

// ID returns the widget's id.
func (m ManagedWidget) ID() WidgetID {
	return m.id
}

// Tree returns the tree the widget was mounted in.
func (m ManagedWidget) Tree() *Tree {
	return m.tree
}

// Instance returns the widget's instance.
func (m ManagedWidget) Instance() *WidgetInstance {
	return m.instance
}

// IsZero reports whether m is the zero handle.
func (m ManagedWidget) IsZero() bool {
	return m.tree == nil || m.instance == nil
}

// Lock locks the widget's instance.
func (m ManagedWidget) Lock() *WidgetGuard {
	return m.instance.Lock()
}

// IsMounted reports whether the handle still refers to a mounted widget.
func (m ManagedWidget) IsMounted() bool {
	if m.IsZero() {
		return false
	}
	current, ok := m.tree.Widget(m.id)
	return ok && current.instance == m.instance
}

// LastLayout returns the rectangle the widget was last laid out at.
func (m ManagedWidget) LastLayout() (graphics.Rect, bool) {
	if !m.IsMounted() {
		return graphics.Rect{}, false
	}
	return m.tree.Layout(m.id)
}

// Parent returns the handle of the widget's parent.
func (m ManagedWidget) Parent() (ManagedWidget, bool) {
	if m.IsZero() {
		return ManagedWidget{}, false
	}
	parent, ok := m.tree.Parent(m.id)
	if !ok {
		return ManagedWidget{}, false
	}
	return m.tree.Widget(parent)
}

// Children returns handles to the widget's children in order.
func (m ManagedWidget) Children() []ManagedWidget {
	if m.IsZero() {
		return nil
	}
	ids := m.tree.Children(m.id)
	out := make([]ManagedWidget, 0, len(ids))
	for _, id := range ids {
		if child, ok := m.tree.Widget(id); ok {
			out = append(out, child)
		}
	}
	return out
}

// Hovered reports whether the widget or one of its descendants is under
// the cursor.
func (m ManagedWidget) Hovered() bool {
	return !m.IsZero() && m.tree.IsHovered(m.id)
}

// PrimaryHover reports whether the widget itself is the hovered widget.
func (m ManagedWidget) PrimaryHover() bool {
	if m.IsZero() {
		return false
	}
	id, ok := m.tree.Hovered()
	return ok && id == m.id
}

// Focused reports whether the widget has keyboard focus.
func (m ManagedWidget) Focused() bool {
	if m.IsZero() {
		return false
	}
	id, ok := m.tree.Focused()
	return ok && id == m.id
}

// Active reports whether the widget is the active widget.
func (m ManagedWidget) Active() bool {
	if m.IsZero() {
		return false
	}
	id, ok := m.tree.Active()
	return ok && id == m.id
}

// AttachStyles merges s into the widget's attached styles.
func (m ManagedWidget) AttachStyles(s styles.Styles) {
	if !m.IsZero() {
		m.tree.AttachStyles(m.id, s)
	}
}

// Styles returns the styles in effect for the widget.
func (m ManagedWidget) Styles() styles.Styles {
	if m.IsZero() {
		return styles.New()
	}
	return m.tree.Styles(m.id)
}

// Equal reports whether m and other refer to the same widget instance.
// Handles compare by instance, not by id.
func (m ManagedWidget) Equal(other ManagedWidget) bool {
	return m.instance == other.instance
}

// EqualInstance reports whether m wraps w.
func (m ManagedWidget) EqualInstance(w *WidgetInstance) bool {
	return m.instance == w
}

func (m ManagedWidget) String() string {
	if m.IsZero() {
		return "ManagedWidget(<nil>)"
	}
	return fmt.Sprintf("ManagedWidget(%s %s)", m.id, m.instance.TypeName())
}

// WidgetRef holds a child widget until it is mounted. Parents keep a
// WidgetRef per child and mount it from Mounted or lazily during layout:
//
//	func (s *Stack) Mounted(ctx *core.EventContext) {
//	    for _, child := range s.children {
//	        child.Mount(ctx)
//	    }
//	}
type WidgetRef struct {
	instance *WidgetInstance
	managed  ManagedWidget
}

// NewWidgetRef wraps w in a new instance.
func NewWidgetRef(w Widget) *WidgetRef {
	return &WidgetRef{instance: NewWidgetInstance(w)}
}

// RefTo holds an existing instance.
func RefTo(instance *WidgetInstance) *WidgetRef {
	return &WidgetRef{instance: instance}
}

// Instance returns the referenced instance.
func (r *WidgetRef) Instance() *WidgetInstance {
	return r.instance
}

// Mount inserts the instance as a child of the context's widget, unless it
// is already mounted in that tree. It returns the mounted handle.
func (r *WidgetRef) Mount(ctx *EventContext) (ManagedWidget, error) {
	if r.managed.IsMounted() {
		return r.managed, nil
	}
	managed, err := ctx.PushChild(r.instance)
	if err != nil {
		return ManagedWidget{}, err
	}
	r.managed = managed
	return managed, nil
}

// Mounted returns the handle from the last successful Mount, if it is still
// mounted.
func (r *WidgetRef) Mounted() (ManagedWidget, bool) {
	if r.managed.IsMounted() {
		return r.managed, true
	}
	return ManagedWidget{}, false
}

// Unmount removes the referenced widget from its tree.
func (r *WidgetRef) Unmount() {
	if r.managed.IsMounted() {
		r.managed.tree.Remove(r.managed.id)
	}
	r.managed = ManagedWidget{}
}
