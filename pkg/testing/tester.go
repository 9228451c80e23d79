package testing

import (
	"errors"
	"testing"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	"github.com/go-drift/arbor/pkg/window"
)

const (
	// DefaultTestWidth is the default width of the test surface.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default height of the test surface.
	DefaultTestHeight = 600
	// DefaultDevice is the device id used by gesture helpers.
	DefaultDevice input.DeviceID = 1
)

// ErrNotPumped is returned by input helpers before PumpWidget.
var ErrNotPumped = errors.New("no widget has been pumped")

// WidgetTester mounts widgets in a real Window and drives it with
// synthetic platform events, redrawing onto an in-memory surface.
type WidgetTester struct {
	window  *window.Window
	surface *graphics.Surface
	width   int
	height  int
	options []window.Option
	device  input.DeviceID
	mods    input.Modifiers
}

// NewWidgetTester creates a tester with the default surface size.
// Call Cleanup when done, or use NewWidgetTesterWithT instead.
func NewWidgetTester(opts ...window.Option) *WidgetTester {
	return &WidgetTester{
		width:   DefaultTestWidth,
		height:  DefaultTestHeight,
		options: opts,
		device:  DefaultDevice,
	}
}

// NewWidgetTesterWithT creates a tester that cleans up via t.Cleanup.
func NewWidgetTesterWithT(t testing.TB, opts ...window.Option) *WidgetTester {
	tester := NewWidgetTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the current tree.
func (t *WidgetTester) Cleanup() {
	if t.window != nil {
		t.window.Close()
		t.window = nil
	}
}

// SetSize sets the surface size. Must be called before PumpWidget.
func (t *WidgetTester) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// SetDevice sets the device id used by gesture helpers.
func (t *WidgetTester) SetDevice(device input.DeviceID) {
	t.device = device
}

// SetModifiers sets the modifiers held for subsequent key events.
func (t *WidgetTester) SetModifiers(mods input.Modifiers) {
	t.mods = mods
}

// PumpWidget mounts (or remounts) w as the root of a new window and runs
// one redraw.
func (t *WidgetTester) PumpWidget(w core.Widget) error {
	return t.PumpInstance(core.NewWidgetInstance(w))
}

// PumpInstance is PumpWidget for an existing instance.
func (t *WidgetTester) PumpInstance(instance *core.WidgetInstance) error {
	t.Cleanup()
	opts := append([]window.Option{window.WithSize(t.width, t.height)}, t.options...)
	w, err := window.New(instance, opts...)
	if err != nil {
		return err
	}
	t.window = w
	t.surface = graphics.NewSurface(t.width, t.height)
	return t.Pump()
}

// PumpProbe mounts a probe tree.
func (t *WidgetTester) PumpProbe(p *Probe) error {
	return t.PumpInstance(p.Instance())
}

// Pump redraws the window onto the test surface.
func (t *WidgetTester) Pump() error {
	if t.window == nil {
		return ErrNotPumped
	}
	t.window.Redraw(t.surface)
	return nil
}

// PumpIfNeeded redraws only when the window reports pending changes and
// reports whether it did.
func (t *WidgetTester) PumpIfNeeded() bool {
	if t.window == nil || !t.window.NeedsRedraw() {
		return false
	}
	t.window.Redraw(t.surface)
	return true
}

// Window returns the window under test.
func (t *WidgetTester) Window() *window.Window {
	return t.window
}

// Tree returns the tree under test.
func (t *WidgetTester) Tree() *core.Tree {
	if t.window == nil {
		return nil
	}
	return t.window.Tree()
}

// Surface returns the surface the last Pump drew onto.
func (t *WidgetTester) Surface() *graphics.Surface {
	return t.surface
}
