package input

import (
	"fmt"
	"runtime"
	"strings"
)

// KeyCode names a physical key. Letter and digit keys use their lowercase
// character ("a", "7"); named keys use the constants below.
type KeyCode string

const (
	KeyTab       KeyCode = "tab"
	KeyEnter     KeyCode = "enter"
	KeySpace     KeyCode = "space"
	KeyEscape    KeyCode = "escape"
	KeyBackspace KeyCode = "backspace"
	KeyDelete    KeyCode = "delete"
	KeyLeft      KeyCode = "left"
	KeyRight     KeyCode = "right"
	KeyUp        KeyCode = "up"
	KeyDown      KeyCode = "down"
	KeyHome      KeyCode = "home"
	KeyEnd       KeyCode = "end"
	KeyW         KeyCode = "w"
)

// ParseKeyCode normalizes a key name.
func ParseKeyCode(name string) (KeyCode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("empty key name")
	}
	return KeyCode(name), nil
}

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Has reports whether every modifier in m is held.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod == mod
}

// Primary reports whether the platform's primary shortcut modifier is held:
// Command on macOS, Control elsewhere.
func (m Modifiers) Primary() bool {
	if runtime.GOOS == "darwin" {
		return m.Has(ModSuper)
	}
	return m.Has(ModControl)
}

// ParseModifiers parses names such as "shift", "ctrl", "alt", "super" and
// the platform-neutral "primary".
func ParseModifiers(names []string) (Modifiers, error) {
	var m Modifiers
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "shift":
			m |= ModShift
		case "ctrl", "control":
			m |= ModControl
		case "alt", "option":
			m |= ModAlt
		case "super", "cmd", "meta":
			m |= ModSuper
		case "primary":
			if runtime.GOOS == "darwin" {
				m |= ModSuper
			} else {
				m |= ModControl
			}
		default:
			return 0, fmt.Errorf("unknown modifier %q", name)
		}
	}
	return m, nil
}

// KeyEvent is a single key press or release.
type KeyEvent struct {
	Code      KeyCode
	Text      string
	State     ElementState
	Repeat    bool
	Modifiers Modifiers
}

// ImeKind identifies the phase of an input-method event.
type ImeKind int

const (
	ImeEnabled ImeKind = iota
	ImePreedit
	ImeCommit
	ImeDisabled
)

// String returns a human-readable representation of the kind.
func (k ImeKind) String() string {
	switch k {
	case ImeEnabled:
		return "enabled"
	case ImePreedit:
		return "preedit"
	case ImeCommit:
		return "commit"
	case ImeDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("ImeKind(%d)", int(k))
	}
}

// ImeEvent is an input-method composition event.
type ImeEvent struct {
	Kind ImeKind
	Text string
	// Cursor is the byte range of the preedit cursor, if the input method
	// reported one.
	Cursor *[2]int
}
