package graphics

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// defaultFace is the bitmap face used for text measurement and drawing.
var defaultFace font.Face = basicfont.Face7x13

// Surface is the drawable target handed to Widget.Redraw. Coordinates are
// local to the surface origin; drawing outside the clip is discarded.
type Surface struct {
	img    *image.RGBA
	origin Point
	clip   Rect
}

// NewSurface allocates an RGBA surface of the given pixel size.
func NewSurface(width, height int) *Surface {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &Surface{
		img:  img,
		clip: RectFromLTWH(0, 0, float64(width), float64(height)),
	}
}

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Size returns the size of the visible region.
func (s *Surface) Size() Size {
	return s.clip.Size()
}

// Origin returns the surface origin in backing image coordinates.
func (s *Surface) Origin() Point {
	return s.origin
}

// Region returns a child surface covering rect (in local coordinates). The
// child shares pixels with s and is clipped to the intersection.
func (s *Surface) Region(rect Rect) *Surface {
	return &Surface{
		img:    s.img,
		origin: s.origin.Add(rect.Origin()),
		clip:   rect.Intersect(s.clip).Translate(-rect.Left, -rect.Top),
	}
}

// Fill paints the entire visible region.
func (s *Surface) Fill(c Color) {
	s.FillRect(s.clip, c)
}

// FillRect composites c over rect.
func (s *Surface) FillRect(rect Rect, c Color) {
	r := s.pixelRect(rect.Intersect(s.clip))
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c.NRGBA()), image.Point{}, draw.Over)
}

// DrawText draws a single line of text with its top-left corner at p.
func (s *Surface) DrawText(text string, p Point, c Color) {
	clip := s.pixelRect(s.clip)
	if clip.Empty() {
		return
	}
	dst, ok := s.img.SubImage(clip).(*image.RGBA)
	if !ok {
		return
	}
	metrics := defaultFace.Metrics()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.NRGBA()),
		Face: defaultFace,
		Dot: fixed.Point26_6{
			X: fixed.I(int(math.Round(s.origin.X + p.X))),
			Y: fixed.I(int(math.Round(s.origin.Y+p.Y))) + metrics.Ascent,
		},
	}
	d.DrawString(text)
}

// At returns the color at a local pixel coordinate.
func (s *Surface) At(p Point) Color {
	x := int(math.Floor(s.origin.X + p.X))
	y := int(math.Floor(s.origin.Y + p.Y))
	rgba := s.img.RGBAAt(x, y)
	return RGBA8(rgba.R, rgba.G, rgba.B, rgba.A)
}

func (s *Surface) pixelRect(local Rect) image.Rectangle {
	abs := local.Translate(s.origin.X, s.origin.Y)
	return image.Rect(
		int(math.Floor(abs.Left)),
		int(math.Floor(abs.Top)),
		int(math.Ceil(abs.Right)),
		int(math.Ceil(abs.Bottom)),
	).Intersect(s.img.Bounds())
}

// MeasureText returns the size of a single line of text drawn with the
// default face.
func MeasureText(text string) Size {
	metrics := defaultFace.Metrics()
	advance := font.MeasureString(defaultFace, text)
	return Size{
		Width:  float64(advance.Ceil()),
		Height: float64((metrics.Ascent + metrics.Descent).Ceil()),
	}
}
