package widgets

import (
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	"github.com/go-drift/arbor/pkg/styles"
)

// Button is a clickable, focusable text button.
//
// A click is a left-button press followed by a release inside the button.
// When focused, Enter or Space also activates it. Pressing the button takes
// focus.
//
//	widgets.Button{
//	    Label: "Submit",
//	    OnTap: handleSubmit,
//	}
type Button struct {
	core.Base
	// Label is the text displayed on the button.
	Label string
	// OnTap is called when the button is clicked.
	OnTap func()
	// Disabled makes the button ignore input and refuse focus.
	Disabled bool
	// Color is the background color. Defaults to the BackgroundColor style.
	Color graphics.Color
	// PressedColor is used while the button is active. Defaults to the
	// HighlightColor style.
	PressedColor graphics.Color
	// TextColor defaults to the TextColor style.
	TextColor graphics.Color
	// Padding surrounds the label. Defaults to 6 if zero.
	Padding float64

	size graphics.Size
}

// ButtonOf creates a button with the given label and tap handler.
func ButtonOf(label string, onTap func()) *Button {
	return &Button{Label: label, OnTap: onTap}
}

// Text returns the button label.
func (b *Button) Text() string {
	return b.Label
}

func (b *Button) padding() float64 {
	if b.Padding == 0 {
		return 6
	}
	return b.Padding
}

func (b *Button) Redraw(ctx *core.GraphicsContext) {
	st := ctx.Styles()
	background := b.Color
	if background == graphics.ColorTransparent {
		background = st.Color(styles.BackgroundColor, graphics.RGB(224, 224, 224))
	}
	if ctx.Widget().Active() {
		background = b.PressedColor
		if background == graphics.ColorTransparent {
			background = st.Color(styles.HighlightColor, graphics.RGB(160, 160, 160))
		}
	}
	text := b.TextColor
	if text == graphics.ColorTransparent {
		text = st.Color(styles.TextColor, graphics.ColorBlack)
	}
	if b.Disabled {
		text = text.WithAlpha(0.4)
	}

	surface := ctx.Surface()
	surface.Fill(background)
	pad := b.padding()
	surface.DrawText(b.Label, graphics.Pt(pad, pad), text)
}

func (b *Button) Layout(available graphics.Constraints, _ *core.LayoutContext) graphics.Size {
	measured := graphics.MeasureText(b.Label)
	pad := b.padding()
	b.size = available.Constrain(graphics.Size{Width: measured.Width + 2*pad, Height: measured.Height + 2*pad})
	return b.size
}

func (b *Button) HitTest(graphics.Point, *core.EventContext) bool {
	return !b.Disabled
}

func (b *Button) AcceptFocus(*core.EventContext) bool {
	return !b.Disabled
}

func (b *Button) MouseDown(_ graphics.Point, _ input.DeviceID, button input.MouseButton, ctx *core.EventContext) core.EventHandling {
	if b.Disabled || button != input.MouseButtonLeft {
		return core.Ignored
	}
	ctx.Focus()
	return core.Handled
}

func (b *Button) MouseUp(location *graphics.Point, _ input.DeviceID, _ input.MouseButton, _ *core.EventContext) {
	if location == nil || b.Disabled {
		return
	}
	inside := graphics.RectFromOriginSize(graphics.Point{}, b.size).Contains(*location)
	if inside && b.OnTap != nil {
		b.OnTap()
	}
}

func (b *Button) KeyboardInput(_ input.DeviceID, event input.KeyEvent, _ bool, ctx *core.EventContext) core.EventHandling {
	if b.Disabled || !ctx.Widget().Focused() {
		return core.Ignored
	}
	if event.Code != input.KeyEnter && event.Code != input.KeySpace {
		return core.Ignored
	}
	if event.State.IsPressed() && !event.Repeat && b.OnTap != nil {
		b.OnTap()
	}
	return core.Handled
}
