package window_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	arbortest "github.com/go-drift/arbor/pkg/testing"
	"github.com/go-drift/arbor/pkg/window"
)

type mockBehavior struct {
	mock.Mock
}

func (m *mockBehavior) CloseRequested(w *window.Window) bool {
	args := m.Called(w)
	return args.Bool(0)
}

type panicCollector struct {
	errors.LogHandler
	mu     sync.Mutex
	panics []*errors.PanicError
}

func (h *panicCollector) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *panicCollector) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.panics)
}

func (h *panicCollector) last() *errors.PanicError {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.panics) == 0 {
		return nil
	}
	return h.panics[len(h.panics)-1]
}

// fixture builds:
//
//	root (0,0,200,100)
//	├── left (10,10,80,80) hit
//	│   └── inner (10,10,20,20) hit   -> absolute (20,20,20,20)
//	└── right (110,10,80,80) hit
type fixture struct {
	tester *arbortest.WidgetTester
	rec    *arbortest.Recorder
	root   *arbortest.Probe
	left   *arbortest.Probe
	inner  *arbortest.Probe
	right  *arbortest.Probe
}

func newFixture(t *testing.T, opts ...window.Option) *fixture {
	t.Helper()
	rec := arbortest.NewRecorder()
	f := &fixture{
		tester: arbortest.NewWidgetTesterWithT(t, opts...),
		rec:    rec,
		root:   arbortest.NewProbe("root", rec).WithRect(0, 0, 200, 100),
		left:   arbortest.NewProbe("left", rec).WithRect(10, 10, 80, 80).WithHit(),
		inner:  arbortest.NewProbe("inner", rec).WithRect(10, 10, 20, 20).WithHit(),
		right:  arbortest.NewProbe("right", rec).WithRect(110, 10, 80, 80).WithHit(),
	}
	f.left.Add(f.inner)
	f.root.Add(f.left, f.right)
	f.tester.SetSize(200, 100)
	return f
}

func (f *fixture) pump(t *testing.T) {
	t.Helper()
	require.NoError(t, f.tester.PumpProbe(f.root))
	f.rec.Reset()
}

func TestWindow_MountsAndLaysOut(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tester.PumpProbe(f.root))

	assert.Equal(t, []string{"root.mounted", "left.mounted", "inner.mounted", "right.mounted"}, f.rec.Calls())
	rect, ok := f.tester.Find(arbortest.ByName("inner")).First().LastLayout()
	require.True(t, ok)
	assert.Equal(t, graphics.RectFromLTWH(20, 20, 20, 20), rect)
	assert.False(t, f.tester.Window().NeedsRedraw())
}

func TestWindow_HoverSwitchOrder(t *testing.T) {
	f := newFixture(t)
	f.pump(t)

	require.NoError(t, f.tester.MoveTo(graphics.Pt(15, 15)))
	require.NoError(t, f.tester.MoveTo(graphics.Pt(25, 25)))
	require.NoError(t, f.tester.MoveTo(graphics.Pt(26, 25)))
	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	require.NoError(t, f.tester.MoveTo(graphics.Pt(100, 95)))

	assert.Equal(t, []string{
		"left.hover (5,5)",
		"left.unhover",
		"inner.hover (5,5)",
		"inner.hover (6,5)",
		"inner.unhover",
		"right.hover (40,40)",
		"right.unhover",
	}, f.rec.Lines())
	_, hovered := f.tester.Tree().Hovered()
	assert.False(t, hovered)
}

func TestWindow_CursorLeftClearsHover(t *testing.T) {
	f := newFixture(t)
	f.pump(t)

	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	require.NoError(t, f.tester.Leave())

	assert.Equal(t, []string{"right.hover", "right.unhover"}, f.rec.Calls())
	_, ok := f.tester.Window().CursorPosition()
	assert.False(t, ok)

	f.rec.Reset()
	require.NoError(t, f.tester.SendMouseDown(input.MouseButtonLeft))
	assert.Empty(t, f.rec.Lines(), "a press without a cursor position is dropped")
}

func TestWindow_DefaultWidgetsAreNotInteractive(t *testing.T) {
	rec := arbortest.NewRecorder()
	root := arbortest.NewProbe("root", rec).Handling(arbortest.HandleAll)
	plain := arbortest.NewProbe("plain", rec).WithRect(0, 0, 50, 50).Handling(arbortest.HandleAll)
	root.Add(plain)

	tester := arbortest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpProbe(root))
	rec.Reset()

	require.NoError(t, tester.TapAt(graphics.Pt(10, 10)))
	assert.False(t, rec.Contains("plain.mouse_down"))
	assert.False(t, rec.Contains("plain.hover"))
	assert.False(t, rec.Contains("root.mouse_down"))
}

func TestWindow_MouseDownBubblesToHandler(t *testing.T) {
	f := newFixture(t)
	f.left.Handling(arbortest.HandleMouseDown)
	f.pump(t)

	require.NoError(t, f.tester.MoveTo(graphics.Pt(25, 25)))
	f.rec.Reset()
	require.NoError(t, f.tester.SendMouseDown(input.MouseButtonLeft))

	assert.Equal(t, []string{
		"inner.mouse_down left (5,5)",
		"left.mouse_down left (15,15)",
		"left.activate",
	}, f.rec.Lines())

	captured, ok := f.tester.Tree().Captured(arbortest.DefaultDevice, input.MouseButtonLeft)
	require.True(t, ok)
	assert.Equal(t, f.tester.Find(arbortest.ByName("left")).First().ID(), captured)
}

func TestWindow_UnhandledMouseDownIsDropped(t *testing.T) {
	f := newFixture(t)
	f.pump(t)

	require.NoError(t, f.tester.TapAt(graphics.Pt(25, 25)))
	assert.Equal(t, []string{"inner.mouse_down", "left.mouse_down", "root.mouse_down"},
		filter(f.rec.Calls(), "mouse_down"))
	assert.False(t, f.rec.Contains("inner.mouse_up"))
	assert.Equal(t, 0, f.tester.Tree().CaptureCount())
}

func TestWindow_CaptureRoutesDragAndUp(t *testing.T) {
	f := newFixture(t)
	f.left.Handling(arbortest.HandleMouseDown)
	f.pump(t)

	require.NoError(t, f.tester.MoveTo(graphics.Pt(15, 15)))
	require.NoError(t, f.tester.SendMouseDown(input.MouseButtonLeft))
	f.rec.Reset()

	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	require.NoError(t, f.tester.SendMouseUp(input.MouseButtonLeft))
	require.NoError(t, f.tester.MoveTo(graphics.Pt(160, 50)))

	assert.Equal(t, []string{
		"left.mouse_drag left (140,40)",
		"left.mouse_up left (140,40)",
		"left.deactivate",
		"left.unhover",
		"right.hover (50,40)",
	}, f.rec.Lines())
	assert.False(t, f.tester.Tree().HasCapture(arbortest.DefaultDevice))
}

func TestWindow_CaptureIsPerDevice(t *testing.T) {
	f := newFixture(t)
	f.left.Handling(arbortest.HandleMouseDown)
	f.pump(t)

	require.NoError(t, f.tester.MoveTo(graphics.Pt(15, 15)))
	require.NoError(t, f.tester.SendMouseDown(input.MouseButtonLeft))
	f.rec.Reset()

	f.tester.SetDevice(2)
	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	assert.Equal(t, []string{"left.unhover", "right.hover (40,40)"}, f.rec.Lines())

	f.rec.Reset()
	require.NoError(t, f.tester.SendMouseUp(input.MouseButtonLeft))
	assert.Empty(t, f.rec.Lines(), "device 2 holds no capture")
}

func TestWindow_MouseUpAfterLayoutLossHasNoLocation(t *testing.T) {
	f := newFixture(t)
	f.right.Handling(arbortest.HandleMouseDown)
	f.pump(t)

	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	require.NoError(t, f.tester.SendMouseDown(input.MouseButtonLeft))
	f.tester.Tree().ResetChildLayouts(f.tester.Window().Root().ID())
	f.rec.Reset()

	require.NoError(t, f.tester.SendMouseUp(input.MouseButtonLeft))
	assert.Equal(t, []string{"right.mouse_up left none", "right.deactivate"}, f.rec.Lines())
}

func TestWindow_RemovingCapturedWidgetDropsCapture(t *testing.T) {
	f := newFixture(t)
	f.right.Handling(arbortest.HandleMouseDown)
	f.pump(t)

	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	require.NoError(t, f.tester.SendMouseDown(input.MouseButtonLeft))

	right := f.tester.Find(arbortest.ByName("right")).First()
	f.tester.Tree().Remove(right.ID())
	f.rec.Reset()

	require.NoError(t, f.tester.MoveTo(graphics.Pt(160, 50)))
	require.NoError(t, f.tester.SendMouseUp(input.MouseButtonLeft))
	assert.False(t, f.rec.Contains("right.mouse_drag"))
	assert.False(t, f.rec.Contains("right.mouse_up"))
}

func TestWindow_MouseDownClearsFocus(t *testing.T) {
	f := newFixture(t)
	f.left.Handling(arbortest.HandleMouseDown).FocusOnClick()
	f.right.Handling(arbortest.HandleMouseDown)
	f.pump(t)

	require.NoError(t, f.tester.TapAt(graphics.Pt(15, 15)))
	left := f.tester.Find(arbortest.ByName("left")).First()
	assert.True(t, left.Focused())

	f.rec.Reset()
	require.NoError(t, f.tester.TapAt(graphics.Pt(15, 15)))
	assert.Equal(t, []string{"left.blur", "left.mouse_down", "left.focus"},
		filter(f.rec.Calls(), "blur", "mouse_down", "focus"),
		"re-requesting focus from MouseDown follows the clear")
	assert.True(t, left.Focused())

	require.NoError(t, f.tester.TapAt(graphics.Pt(150, 50)))
	assert.True(t, f.rec.Contains("left.blur"))
	_, focused := f.tester.Tree().Focused()
	assert.False(t, focused, "clicking a widget that does not take focus clears it")
}

func TestWindow_MouseDownBlursBeforeDispatch(t *testing.T) {
	f := newFixture(t)
	f.left.Handling(arbortest.HandleMouseDown).FocusOnClick()
	f.right.Handling(arbortest.HandleMouseDown)
	f.pump(t)

	require.NoError(t, f.tester.TapAt(graphics.Pt(15, 15)))
	require.True(t, f.tester.Find(arbortest.ByName("left")).First().Focused())

	f.rec.Reset()
	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	require.NoError(t, f.tester.SendMouseDown(input.MouseButtonLeft))

	blur := f.rec.Index("left.blur")
	down := f.rec.Index("right.mouse_down")
	require.NotEqual(t, -1, blur)
	require.NotEqual(t, -1, down)
	assert.Less(t, blur, down, "focus is cleared before the press is dispatched")
	assert.Less(t, down, f.rec.Index("right.activate"))
}

func TestWindow_KeyboardTargetsFocusThenRoot(t *testing.T) {
	f := newFixture(t)
	f.left.FocusOnClick().Handling(arbortest.HandleMouseDown)
	f.pump(t)

	require.NoError(t, f.tester.SendKey(input.KeyEnter, input.Pressed))
	assert.Equal(t, []string{"root.keyboard_input enter pressed"}, f.rec.Lines())

	require.NoError(t, f.tester.TapAt(graphics.Pt(15, 15)))
	f.rec.Reset()
	require.NoError(t, f.tester.SendKey(input.KeyEnter, input.Pressed))
	assert.Equal(t, []string{"left.keyboard_input", "root.keyboard_input"}, f.rec.Calls())

	f.rec.Reset()
	require.NoError(t, f.tester.EnterText("hi"))
	assert.Equal(t, []string{`left.ime commit "hi"`, `root.ime commit "hi"`}, f.rec.Lines())
}

func TestWindow_WheelTargetsHoveredThenRoot(t *testing.T) {
	f := newFixture(t)
	f.left.Handling(arbortest.HandleWheel)
	f.pump(t)

	require.NoError(t, f.tester.Scroll(0, 1))
	assert.Equal(t, []string{"root.mouse_wheel (0,1)"}, f.rec.Lines())

	require.NoError(t, f.tester.MoveTo(graphics.Pt(25, 25)))
	f.rec.Reset()
	require.NoError(t, f.tester.Scroll(0, -2))
	assert.Equal(t, []string{"inner.mouse_wheel (0,-2)", "left.mouse_wheel (0,-2)"}, f.rec.Lines())
}

func TestWindow_TabMovesFocus(t *testing.T) {
	f := newFixture(t)
	f.left.AcceptingFocus()
	f.right.AcceptingFocus()
	f.pump(t)

	require.NoError(t, f.tester.PressKey(input.KeyTab))
	assert.True(t, f.tester.Find(arbortest.ByName("left")).First().Focused())

	require.NoError(t, f.tester.PressKey(input.KeyTab))
	assert.True(t, f.tester.Find(arbortest.ByName("right")).First().Focused())

	f.tester.SetModifiers(input.ModShift)
	require.NoError(t, f.tester.PressKey(input.KeyTab))
	assert.True(t, f.tester.Find(arbortest.ByName("left")).First().Focused())
	assert.Equal(t, []string{"left.focus", "left.blur", "right.focus", "right.blur", "left.focus"},
		filter(f.rec.Calls(), "focus", "blur"))
}

func TestWindow_TabHandledByWidgetDoesNotMoveFocus(t *testing.T) {
	f := newFixture(t)
	f.root.Handling(arbortest.HandleKeyboard)
	f.left.AcceptingFocus()
	f.pump(t)

	require.NoError(t, f.tester.PressKey(input.KeyTab))
	_, focused := f.tester.Tree().Focused()
	assert.False(t, focused)
}

func TestWindow_CloseShortcut(t *testing.T) {
	behavior := &mockBehavior{}
	f := newFixture(t, window.WithBehavior(behavior))
	f.pump(t)
	behavior.On("CloseRequested", f.tester.Window()).Return(false).Once()
	behavior.On("CloseRequested", f.tester.Window()).Return(true).Once()

	f.tester.SetModifiers(input.ModControl | input.ModSuper)
	require.NoError(t, f.tester.SendKey(input.KeyW, input.Pressed))
	assert.False(t, f.tester.Window().Closed(), "the shortcut fires on release")

	require.NoError(t, f.tester.SendKey(input.KeyW, input.Released))
	assert.False(t, f.tester.Window().Closed())

	require.NoError(t, f.tester.SendKey(input.KeyW, input.Released))
	assert.True(t, f.tester.Window().Closed())
	behavior.AssertExpectations(t)
}

func TestWindow_CloseShortcutSkippedWhenHandled(t *testing.T) {
	behavior := &mockBehavior{}
	f := newFixture(t, window.WithBehavior(behavior))
	f.root.Handling(arbortest.HandleKeyboard)
	f.pump(t)

	f.tester.SetModifiers(input.ModControl | input.ModSuper)
	require.NoError(t, f.tester.PressKey(input.KeyW))
	behavior.AssertNotCalled(t, "CloseRequested", mock.Anything)
	assert.False(t, f.tester.Window().Closed())
}

func TestWindow_PanickingWidgetDoesNotWedgeWindow(t *testing.T) {
	handler := &panicCollector{}
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)

	f := newFixture(t)
	f.right.PanicOn("mouse_down")
	f.pump(t)

	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	f.tester.PumpIfNeeded()
	require.NoError(t, f.tester.SendMouseDown(input.MouseButtonLeft))
	require.Equal(t, 1, handler.count())
	assert.Equal(t, "window.MouseInput", handler.last().Op)
	assert.Equal(t, errors.KindDispatch, handler.last().Kind)
	assert.True(t, f.tester.Window().NeedsRedraw(), "a panic during dispatch requests a redraw")

	right := f.tester.Find(arbortest.ByName("right")).First()
	assert.True(t, right.Instance().Poisoned())
	assert.Equal(t, 0, f.tester.Tree().CaptureCount())

	f.rec.Reset()
	require.NoError(t, f.tester.MoveTo(graphics.Pt(15, 15)))
	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	assert.Equal(t, []string{"right.unhover", "left.hover", "left.unhover", "right.hover"}, f.rec.Calls())
}

func TestWindow_TreeRejectsSecondRoot(t *testing.T) {
	f := newFixture(t)
	f.pump(t)

	extra := arbortest.NewProbe("extra", f.rec)
	_, err := f.tester.Tree().InsertRoot(extra.Instance())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMultipleRoots))
	assert.Len(t, f.tester.Tree().Roots(), 1)
	assert.False(t, f.rec.Contains("extra.mounted"))
}

func TestWindow_NeedsRedraw(t *testing.T) {
	f := newFixture(t)
	f.pump(t)
	w := f.tester.Window()
	assert.False(t, w.NeedsRedraw())

	require.NoError(t, f.tester.MoveTo(graphics.Pt(150, 50)))
	assert.True(t, w.NeedsRedraw(), "hover change requests a redraw")
	assert.True(t, f.tester.PumpIfNeeded())
	assert.False(t, f.tester.PumpIfNeeded())

	value := core.NewValue("a")
	window.Watch(w, value)
	done := make(chan struct{})
	go func() {
		defer close(done)
		value.Set("b")
	}()
	<-done
	assert.True(t, w.NeedsRedraw())
}

func TestWindow_RedrawPaintsBackgroundAndProbes(t *testing.T) {
	f := newFixture(t, window.WithBackground(graphics.ColorWhite))
	f.right.WithColor(graphics.RGB(255, 0, 0))
	f.pump(t)

	surface := f.tester.Surface()
	assert.Equal(t, graphics.RGB(255, 0, 0), surface.At(graphics.Pt(150, 50)))
	assert.Equal(t, graphics.ColorWhite, surface.At(graphics.Pt(100, 95)))
	assert.Equal(t, 1, f.right.Redraws())
}

func TestWindow_SetRootReplacesTree(t *testing.T) {
	f := newFixture(t)
	f.pump(t)
	w := f.tester.Window()

	other := arbortest.NewProbe("other", f.rec)
	require.NoError(t, w.SetRoot(other.Instance()))

	assert.True(t, f.rec.Contains("root.unmounted"))
	assert.True(t, f.rec.Contains("inner.unmounted"))
	assert.True(t, f.rec.Contains("other.mounted"))
	assert.Equal(t, 1, w.Tree().Len())
}

func filter(calls []string, suffixes ...string) []string {
	var out []string
	for _, call := range calls {
		for _, suffix := range suffixes {
			if len(call) > len(suffix) && call[len(call)-len(suffix)-1:] == "."+suffix {
				out = append(out, call)
				break
			}
		}
	}
	return out
}
