package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContainsIsHalfOpen(t *testing.T) {
	r := RectFromLTWH(10, 10, 20, 20)

	assert.True(t, r.Contains(Pt(10, 10)))
	assert.True(t, r.Contains(Pt(29.5, 29.5)))
	assert.False(t, r.Contains(Pt(30, 15)))
	assert.False(t, r.Contains(Pt(15, 30)))
	assert.False(t, r.Contains(Pt(9.9, 15)))
}

func TestPointSubIsRelativeToOrigin(t *testing.T) {
	r := RectFromLTWH(40, 60, 10, 10)
	assert.Equal(t, Pt(5, 2), Pt(45, 62).Sub(r.Origin()))
}

func TestConstraintsConstrain(t *testing.T) {
	tests := []struct {
		name        string
		constraints Constraints
		measured    Size
		want        Size
	}{
		{"tight ignores content", Tight(Size{100, 50}), Size{10, 10}, Size{100, 50}},
		{"loose keeps content", Loose(Size{100, 50}), Size{10, 10}, Size{10, 10}},
		{"loose clamps content", Loose(Size{100, 50}), Size{300, 80}, Size{100, 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.constraints.Constrain(tt.measured))
		})
	}
}

func TestSurfaceRegionClipsAndTranslates(t *testing.T) {
	s := NewSurface(20, 20)
	child := s.Region(RectFromLTWH(10, 10, 20, 20))

	assert.Equal(t, Size{Width: 10, Height: 10}, child.Size())

	child.Fill(ColorWhite)
	assert.Equal(t, ColorWhite, s.At(Pt(15, 15)))
	assert.Equal(t, ColorTransparent, s.At(Pt(5, 5)))
	assert.Equal(t, ColorWhite, child.At(Pt(0, 0)))
}

func TestMeasureText(t *testing.T) {
	empty := MeasureText("")
	hello := MeasureText("hello")

	assert.Zero(t, empty.Width)
	assert.Greater(t, hello.Width, 0.0)
	assert.Equal(t, empty.Height, hello.Height)
	assert.Equal(t, 2*hello.Width, MeasureText("hellohello").Width)
}
