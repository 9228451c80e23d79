package widgets

import (
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
)

// Space is an empty, non-interactive widget. With no explicit size it fills
// the available space.
type Space struct {
	core.Base
	// Width and Height request a fixed size when positive.
	Width  float64
	Height float64
	// Color fills the space when not transparent.
	Color graphics.Color
}

// VSpace returns a vertical gap of height.
func VSpace(height float64) *Space {
	return &Space{Height: height}
}

// HSpace returns a horizontal gap of width.
func HSpace(width float64) *Space {
	return &Space{Width: width}
}

func (s *Space) Redraw(ctx *core.GraphicsContext) {
	if s.Color.Alpha() > 0 {
		ctx.Surface().Fill(s.Color)
	}
}

func (s *Space) Layout(available graphics.Constraints, _ *core.LayoutContext) graphics.Size {
	size := graphics.Size{Width: available.Width.Max, Height: available.Height.Max}
	if s.Width > 0 {
		size.Width = s.Width
	} else if !available.Width.Fill {
		size.Width = 0
	}
	if s.Height > 0 {
		size.Height = s.Height
	} else if !available.Height.Fill {
		size.Height = 0
	}
	return available.Constrain(size)
}
