package widgets

import (
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
)

// Axis is the direction a Stack places its children in.
type Axis int

const (
	// Vertical stacks children top to bottom.
	Vertical Axis = iota
	// Horizontal stacks children left to right.
	Horizontal
)

// Stack places its children one after another along Direction, each at its
// natural size, separated by Spacing.
type Stack struct {
	core.Base
	Direction Axis
	Spacing   float64
	Children  []core.Widget

	refs []*core.WidgetRef
}

// ColumnOf returns a vertical stack.
func ColumnOf(spacing float64, children ...core.Widget) *Stack {
	return &Stack{Direction: Vertical, Spacing: spacing, Children: children}
}

// RowOf returns a horizontal stack.
func RowOf(spacing float64, children ...core.Widget) *Stack {
	return &Stack{Direction: Horizontal, Spacing: spacing, Children: children}
}

func (s *Stack) Mounted(ctx *core.EventContext) {
	if len(s.refs) != len(s.Children) {
		s.refs = make([]*core.WidgetRef, len(s.Children))
		for i, child := range s.Children {
			s.refs[i] = core.NewWidgetRef(child)
		}
	}
	for _, ref := range s.refs {
		if _, err := ref.Mount(ctx); err != nil {
			ctx.Tree().Logger().Error().Err(err).Msg("stack child mount failed")
		}
	}
}

func (s *Stack) Unmounted(*core.EventContext) {
	s.refs = nil
}

func (s *Stack) Redraw(ctx *core.GraphicsContext) {
	for _, ref := range s.refs {
		if child, ok := ref.Mounted(); ok {
			ctx.RedrawChild(child)
		}
	}
}

func (s *Stack) Layout(available graphics.Constraints, ctx *core.LayoutContext) graphics.Size {
	var offset, cross float64
	placed := 0
	for _, ref := range s.refs {
		child, ok := ref.Mounted()
		if !ok {
			continue
		}
		if placed > 0 {
			offset += s.Spacing
		}
		remaining := available
		if s.Direction == Vertical {
			remaining.Height = graphics.SizeToFit(max(available.Height.Max-offset, 0))
			remaining.Width.Fill = false
		} else {
			remaining.Width = graphics.SizeToFit(max(available.Width.Max-offset, 0))
			remaining.Height.Fill = false
		}
		size := ctx.Layout(child, remaining)

		if s.Direction == Vertical {
			ctx.SetChildLayout(child, graphics.RectFromLTWH(0, offset, size.Width, size.Height))
			offset += size.Height
			cross = max(cross, size.Width)
		} else {
			ctx.SetChildLayout(child, graphics.RectFromLTWH(offset, 0, size.Width, size.Height))
			offset += size.Width
			cross = max(cross, size.Height)
		}
		placed++
	}
	if s.Direction == Vertical {
		return available.Constrain(graphics.Size{Width: cross, Height: offset})
	}
	return available.Constrain(graphics.Size{Width: offset, Height: cross})
}
