package testing

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	"github.com/go-drift/arbor/pkg/styles"
)

// Handles selects which bubbling events a Probe reports as handled.
type Handles uint8

const (
	HandleMouseDown Handles = 1 << iota
	HandleKeyboard
	HandleIme
	HandleWheel

	HandleAll = HandleMouseDown | HandleKeyboard | HandleIme | HandleWheel
)

// ParseHandles parses names such as "mouse_down", "keyboard", "ime",
// "wheel", and "all".
func ParseHandles(names []string) (Handles, error) {
	var h Handles
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "mouse_down", "mouse":
			h |= HandleMouseDown
		case "keyboard", "key":
			h |= HandleKeyboard
		case "ime":
			h |= HandleIme
		case "wheel", "mouse_wheel":
			h |= HandleWheel
		case "all":
			h |= HandleAll
		default:
			return 0, fmt.Errorf("unknown event %q", name)
		}
	}
	return h, nil
}

// Probe is a widget that occupies a fixed rectangle, relative to its
// parent, and records every callback it receives.
type Probe struct {
	core.Base

	name         string
	rec          *Recorder
	rect         graphics.Rect
	hasRect      bool
	hit          bool
	handles      Handles
	acceptFocus  bool
	focusOnClick bool
	color        graphics.Color
	panicOn      string

	children []*Probe
	refs     []*core.WidgetRef
	instance *core.WidgetInstance
	redraws  atomic.Int64
}

// NewProbe returns a probe that records into rec.
func NewProbe(name string, rec *Recorder) *Probe {
	p := &Probe{name: name, rec: rec}
	p.instance = core.NewWidgetInstance(p)
	return p
}

// WithRect places the probe relative to its parent.
func (p *Probe) WithRect(left, top, width, height float64) *Probe {
	p.rect = graphics.RectFromLTWH(left, top, width, height)
	p.hasRect = true
	return p
}

// WithHit makes the probe pass hit tests.
func (p *Probe) WithHit() *Probe {
	p.hit = true
	return p
}

// Handling makes the probe report h as handled.
func (p *Probe) Handling(h Handles) *Probe {
	p.handles |= h
	return p
}

// AcceptingFocus makes the probe accept keyboard focus traversal.
func (p *Probe) AcceptingFocus() *Probe {
	p.acceptFocus = true
	return p
}

// FocusOnClick makes the probe request focus from MouseDown.
func (p *Probe) FocusOnClick() *Probe {
	p.focusOnClick = true
	return p
}

// WithColor fills the probe's rectangle during redraw unless a
// background color style overrides it.
func (p *Probe) WithColor(c graphics.Color) *Probe {
	p.color = c
	return p
}

// PanicOn makes the probe panic when callback runs.
func (p *Probe) PanicOn(callback string) *Probe {
	p.panicOn = callback
	return p
}

// Add appends children, which are mounted when the probe is.
func (p *Probe) Add(children ...*Probe) *Probe {
	for _, child := range children {
		p.children = append(p.children, child)
		p.refs = append(p.refs, core.RefTo(child.instance))
	}
	return p
}

// Name returns the probe's name.
func (p *Probe) Name() string {
	return p.name
}

// Instance returns the probe's widget instance.
func (p *Probe) Instance() *core.WidgetInstance {
	return p.instance
}

// LinkFocusTo sets next as the widget that receives focus after p.
func (p *Probe) LinkFocusTo(next *Probe) *Probe {
	p.instance.WithNextFocusWidget(next.instance)
	return p
}

// Children returns the probe's children.
func (p *Probe) Children() []*Probe {
	return p.children
}

// Redraws returns how many times the probe was painted.
func (p *Probe) Redraws() int {
	return int(p.redraws.Load())
}

// Walk calls fn for p and every descendant in pre-order.
func (p *Probe) Walk(fn func(*Probe)) {
	fn(p)
	for _, child := range p.children {
		child.Walk(fn)
	}
}

func (p *Probe) record(callback string, args ...string) {
	if p.panicOn == callback {
		panic(fmt.Sprintf("probe %s panicked in %s", p.name, callback))
	}
	if p.rec != nil {
		p.rec.Record(p.name, callback, args...)
	}
}

func formatPoint(pt graphics.Point) string {
	return "(" + strconv.FormatFloat(pt.X, 'g', -1, 64) + "," + strconv.FormatFloat(pt.Y, 'g', -1, 64) + ")"
}

func (p *Probe) Redraw(ctx *core.GraphicsContext) {
	p.redraws.Add(1)
	if p.panicOn == "redraw" {
		p.record("redraw")
	}
	if fill := ctx.Styles().Color(styles.BackgroundColor, p.color); fill.Alpha() > 0 {
		ctx.Surface().Fill(fill)
	}
	for _, ref := range p.refs {
		if child, ok := ref.Mounted(); ok {
			ctx.RedrawChild(child)
		}
	}
}

func (p *Probe) Layout(available graphics.Constraints, ctx *core.LayoutContext) graphics.Size {
	for i, ref := range p.refs {
		child, ok := ref.Mounted()
		if !ok {
			continue
		}
		rect := p.children[i].rect
		ctx.Layout(child, graphics.Tight(rect.Size()))
		ctx.SetChildLayout(child, rect)
	}
	if p.hasRect {
		return available.Constrain(p.rect.Size())
	}
	return available.Constrain(graphics.Size{Width: available.Width.Max, Height: available.Height.Max})
}

func (p *Probe) Mounted(ctx *core.EventContext) {
	p.record("mounted")
	for _, ref := range p.refs {
		_, _ = ref.Mount(ctx)
	}
}

func (p *Probe) Unmounted(*core.EventContext) {
	p.record("unmounted")
}

func (p *Probe) HitTest(graphics.Point, *core.EventContext) bool {
	if p.panicOn == "hit_test" {
		p.record("hit_test")
	}
	return p.hit
}

func (p *Probe) Hover(location graphics.Point, _ *core.EventContext) {
	p.record("hover", formatPoint(location))
}

func (p *Probe) Unhover(*core.EventContext) {
	p.record("unhover")
}

func (p *Probe) AcceptFocus(*core.EventContext) bool {
	return p.acceptFocus
}

func (p *Probe) Focus(*core.EventContext) {
	p.record("focus")
}

func (p *Probe) Blur(*core.EventContext) {
	p.record("blur")
}

func (p *Probe) Activate(*core.EventContext) {
	p.record("activate")
}

func (p *Probe) Deactivate(*core.EventContext) {
	p.record("deactivate")
}

func (p *Probe) MouseDown(location graphics.Point, _ input.DeviceID, button input.MouseButton, ctx *core.EventContext) core.EventHandling {
	p.record("mouse_down", button.String(), formatPoint(location))
	if p.focusOnClick {
		ctx.Focus()
	}
	return p.result(HandleMouseDown)
}

func (p *Probe) MouseDrag(location graphics.Point, _ input.DeviceID, button input.MouseButton, _ *core.EventContext) {
	p.record("mouse_drag", button.String(), formatPoint(location))
}

func (p *Probe) MouseUp(location *graphics.Point, _ input.DeviceID, button input.MouseButton, _ *core.EventContext) {
	where := "none"
	if location != nil {
		where = formatPoint(*location)
	}
	p.record("mouse_up", button.String(), where)
}

func (p *Probe) KeyboardInput(_ input.DeviceID, event input.KeyEvent, synthetic bool, _ *core.EventContext) core.EventHandling {
	args := []string{string(event.Code), event.State.String()}
	if synthetic {
		args = append(args, "synthetic")
	}
	p.record("keyboard_input", args...)
	return p.result(HandleKeyboard)
}

func (p *Probe) Ime(event input.ImeEvent, _ *core.EventContext) core.EventHandling {
	p.record("ime", event.Kind.String(), strconv.Quote(event.Text))
	return p.result(HandleIme)
}

func (p *Probe) MouseWheel(_ input.DeviceID, delta input.ScrollDelta, _ input.TouchPhase, _ *core.EventContext) core.EventHandling {
	p.record("mouse_wheel", formatPoint(graphics.Pt(delta.X, delta.Y)))
	return p.result(HandleWheel)
}

func (p *Probe) result(h Handles) core.EventHandling {
	if p.handles&h != 0 {
		return core.Handled
	}
	return core.Ignored
}

func (p *Probe) String() string {
	return "Probe(" + p.name + ")"
}
