package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/arbor/pkg/graphics"
)

func TestEventContext_ApplyPendingState_NotifiesOldBeforeNew(t *testing.T) {
	log := &eventLog{}
	host := &redrawCounter{}
	tree := NewTree(WithHost(host))
	root := insert(t, tree, newTestWidget("root", log), nil)
	a := insert(t, tree, newTestWidget("a", log), ptr(root.ID()))
	b := insert(t, tree, newTestWidget("b", log), ptr(root.ID()))

	ctx := NewEventContext(a)
	ctx.Focus()
	ctx.Activate()
	ctx.SetHovered(graphics.Pt(1, 2))
	ctx.ApplyPendingState()

	log.reset()
	other := ctx.ForOther(b)
	other.Focus()
	other.Activate()
	other.SetHovered(graphics.Pt(3, 4))
	other.ApplyPendingState()

	assert.Equal(t, []string{
		"a.blur", "b.focus",
		"a.deactivate", "b.activate",
		"a.unhover", "b.hover(3,4)",
	}, log.all())
	assert.True(t, b.Focused())
	assert.False(t, a.Focused())
	assert.Positive(t, host.get())
}

func TestEventContext_ApplyPendingState_NoChangeNoNotification(t *testing.T) {
	log := &eventLog{}
	tree := NewTree()
	root := insert(t, tree, newTestWidget("root", log), nil)

	ctx := NewEventContext(root)
	ctx.Focus()
	ctx.ApplyPendingState()
	log.reset()

	ctx.ClearFocus()
	ctx.Focus()
	ctx.ApplyPendingState()
	assert.Empty(t, log.all(), "focus requested by the holder is a no-op")
}

func TestEventContext_BlurOnlyAffectsHolder(t *testing.T) {
	log := &eventLog{}
	tree := NewTree()
	root := insert(t, tree, newTestWidget("root", log), nil)
	child := insert(t, tree, newTestWidget("child", log), ptr(root.ID()))

	ctx := NewEventContext(child)
	ctx.Focus()
	ctx.ApplyPendingState()

	ctx.ForOther(root).Blur()
	ctx.ApplyPendingState()
	assert.True(t, child.Focused())

	ctx.Blur()
	ctx.ApplyPendingState()
	assert.False(t, child.Focused())
}

func TestEventContext_RequestsFromNotificationsAreApplied(t *testing.T) {
	log := &eventLog{}
	tree := NewTree()
	root := insert(t, tree, newTestWidget("root", log), nil)
	a := newTestWidget("a", log)
	a.onMounted = func(ctx *EventContext) { ctx.Focus() }

	managed, err := tree.InsertChild(NewWidgetInstance(a), root.ID())
	require.NoError(t, err)

	assert.True(t, managed.Focused(), "focus requested from Mounted is applied by Insert")
	assert.Equal(t, []string{"root.mounted", "a.mounted", "a.focus"}, log.all())
}

func TestLayoutContext_PlacesChildrenRelativeToParent(t *testing.T) {
	log := &eventLog{}
	leaf := newTestWidget("leaf", log)
	leaf.size = graphics.Size{Width: 5, Height: 5}
	mid := newTestWidget("mid", log)
	mid.size = graphics.Size{Width: 50, Height: 50}
	mid.children = []*WidgetRef{NewWidgetRef(leaf)}
	mid.childRects = []graphics.Rect{graphics.RectFromLTWH(2, 3, 5, 5)}
	root := newTestWidget("root", log)
	root.size = graphics.Size{Width: 100, Height: 100}
	root.children = []*WidgetRef{NewWidgetRef(mid)}
	root.childRects = []graphics.Rect{graphics.RectFromLTWH(10, 20, 50, 50)}

	tree := NewTree()
	named := build(tree, root)
	rootWidget := named["root"]

	surface := graphics.NewSurface(100, 100)
	lctx := NewLayoutContext(rootWidget, surface)
	guard := rootWidget.Lock()
	size := guard.Widget().Layout(graphics.Tight(surface.Size()), lctx)
	guard.Release()
	lctx.Place(graphics.RectFromOriginSize(graphics.Point{}, size))

	rect, ok := named["leaf"].LastLayout()
	require.True(t, ok)
	assert.Equal(t, graphics.RectFromLTWH(12, 23, 5, 5), rect)
	rect, _ = named["mid"].LastLayout()
	assert.Equal(t, graphics.RectFromLTWH(10, 20, 50, 50), rect)

	log.reset()
	tree.ResetRenderOrder()
	NewGraphicsContext(rootWidget, surface).Redraw()
	assert.Equal(t, []string{"root.redraw", "mid.redraw", "leaf.redraw"}, log.all())

	var front []string
	for m := range tree.WidgetsAtPoint(graphics.Pt(13, 24)) {
		guard := m.Lock()
		front = append(front, guard.Widget().(*testWidget).name)
		guard.Release()
	}
	assert.Equal(t, []string{"leaf", "mid", "root"}, front)
}

func TestWidgetRef_UnmountRemovesChild(t *testing.T) {
	log := &eventLog{}
	child := NewWidgetRef(newTestWidget("child", log))
	root := newTestWidget("root", log)
	root.children = []*WidgetRef{child}

	tree := NewTree()
	build(tree, root)
	_, ok := child.Mounted()
	require.True(t, ok)

	child.Unmount()
	_, ok = child.Mounted()
	assert.False(t, ok)
	assert.Equal(t, 1, tree.Len())
	assert.Contains(t, log.all(), "child.unmounted")
}
