// Package styles holds the style overrides attached to mounted widgets.
//
// Resolution of styles against a theme is not performed here; the tree only
// stores what was attached so widgets can look it up during redraw.
package styles

import (
	"maps"
	"slices"

	"github.com/go-drift/arbor/pkg/graphics"
)

// Well-known component names.
const (
	TextColor       = "text_color"
	BackgroundColor = "background_color"
	HighlightColor  = "highlight_color"
	Padding         = "padding"
)

// Styles maps component names to values.
type Styles struct {
	components map[string]any
}

// New returns an empty Styles.
func New() Styles {
	return Styles{}
}

// With returns a copy of s with name set to value.
func (s Styles) With(name string, value any) Styles {
	out := Styles{components: maps.Clone(s.components)}
	if out.components == nil {
		out.components = make(map[string]any, 1)
	}
	out.components[name] = value
	return out
}

// Get returns the raw value for name.
func (s Styles) Get(name string) (any, bool) {
	v, ok := s.components[name]
	return v, ok
}

// Color returns name as a color, or fallback.
func (s Styles) Color(name string, fallback graphics.Color) graphics.Color {
	if c, ok := s.components[name].(graphics.Color); ok {
		return c
	}
	return fallback
}

// Float returns name as a float64, or fallback.
func (s Styles) Float(name string, fallback float64) float64 {
	if f, ok := s.components[name].(float64); ok {
		return f
	}
	return fallback
}

// Merge returns s overlaid with other; other wins on conflict.
func (s Styles) Merge(other Styles) Styles {
	if len(other.components) == 0 {
		return s
	}
	out := Styles{components: maps.Clone(s.components)}
	if out.components == nil {
		out.components = make(map[string]any, len(other.components))
	}
	maps.Copy(out.components, other.components)
	return out
}

// Len returns the number of components set.
func (s Styles) Len() int {
	return len(s.components)
}

// Names returns the component names in sorted order.
func (s Styles) Names() []string {
	return slices.Sorted(maps.Keys(s.components))
}
