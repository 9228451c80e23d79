package input

import (
	"fmt"
	"strings"
)

// DeviceID identifies one physical input device. Mouse capture is tracked
// per device, so two mice can drag two widgets at once.
type DeviceID uint64

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonBack
	MouseButtonForward
)

// String returns a human-readable representation of the button.
func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonRight:
		return "right"
	case MouseButtonMiddle:
		return "middle"
	case MouseButtonBack:
		return "back"
	case MouseButtonForward:
		return "forward"
	default:
		return fmt.Sprintf("MouseButton(%d)", int(b))
	}
}

// ParseMouseButton parses the names produced by MouseButton.String.
func ParseMouseButton(name string) (MouseButton, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "":
		return MouseButtonLeft, nil
	case "right":
		return MouseButtonRight, nil
	case "middle":
		return MouseButtonMiddle, nil
	case "back":
		return MouseButtonBack, nil
	case "forward":
		return MouseButtonForward, nil
	default:
		return 0, fmt.Errorf("unknown mouse button %q", name)
	}
}

// ElementState is the pressed/released state of a key or button.
type ElementState int

const (
	Pressed ElementState = iota
	Released
)

// IsPressed reports whether the state is Pressed.
func (s ElementState) IsPressed() bool {
	return s == Pressed
}

// String returns a human-readable representation of the state.
func (s ElementState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// ScrollUnit describes how a ScrollDelta should be interpreted.
type ScrollUnit int

const (
	// ScrollLines is a delta in text lines, as produced by notched wheels.
	ScrollLines ScrollUnit = iota
	// ScrollPixels is a delta in pixels, as produced by touchpads.
	ScrollPixels
)

// ScrollDelta is the payload of a mouse wheel event.
type ScrollDelta struct {
	Unit ScrollUnit
	X    float64
	Y    float64
}

// LineDelta returns a line-based scroll delta.
func LineDelta(x, y float64) ScrollDelta {
	return ScrollDelta{Unit: ScrollLines, X: x, Y: y}
}

// PixelDelta returns a pixel-based scroll delta.
func PixelDelta(x, y float64) ScrollDelta {
	return ScrollDelta{Unit: ScrollPixels, X: x, Y: y}
}

// TouchPhase describes where a wheel or touch gesture is in its lifetime.
type TouchPhase int

const (
	TouchPhaseStarted TouchPhase = iota
	TouchPhaseMoved
	TouchPhaseEnded
	TouchPhaseCancelled
)
