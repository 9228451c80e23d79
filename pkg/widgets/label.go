package widgets

import (
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/styles"
)

// Label draws one line of text.
//
// If Value is set, the label shows its current content and Content is
// ignored. Changes to Value reach the screen on the next redraw; pair it
// with window.Watch so the window knows to redraw.
type Label struct {
	core.Base
	// Content is the text to display.
	Content string
	// Value is an optional reactive source for the text.
	Value *core.Value[string]
	// Color is the text color. Defaults to the TextColor style, then black.
	Color graphics.Color
}

// LabelOf returns a label showing a reactive value.
func LabelOf(value *core.Value[string]) *Label {
	return &Label{Value: value}
}

// Text returns the text the label currently shows.
func (l *Label) Text() string {
	if l.Value != nil {
		return l.Value.Get()
	}
	return l.Content
}

func (l *Label) Redraw(ctx *core.GraphicsContext) {
	color := l.Color
	if color == graphics.ColorTransparent {
		color = ctx.Styles().Color(styles.TextColor, graphics.ColorBlack)
	}
	ctx.Surface().DrawText(l.Text(), graphics.Point{}, color)
}

func (l *Label) Layout(available graphics.Constraints, _ *core.LayoutContext) graphics.Size {
	return available.Constrain(graphics.MeasureText(l.Text()))
}
