package testing

import (
	"fmt"

	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
)

// MoveTo moves the cursor to pos.
func (t *WidgetTester) MoveTo(pos graphics.Point) error {
	if t.window == nil {
		return ErrNotPumped
	}
	t.window.CursorMoved(t.device, pos)
	return nil
}

// Leave moves the cursor out of the window.
func (t *WidgetTester) Leave() error {
	if t.window == nil {
		return ErrNotPumped
	}
	t.window.CursorLeft(t.device)
	return nil
}

// SendMouseDown presses button at the current cursor position.
func (t *WidgetTester) SendMouseDown(button input.MouseButton) error {
	if t.window == nil {
		return ErrNotPumped
	}
	t.window.MouseInput(t.device, input.Pressed, button)
	return nil
}

// SendMouseUp releases button.
func (t *WidgetTester) SendMouseUp(button input.MouseButton) error {
	if t.window == nil {
		return ErrNotPumped
	}
	t.window.MouseInput(t.device, input.Released, button)
	return nil
}

// Hover moves the cursor to the center of the first widget matched by
// finder.
func (t *WidgetTester) Hover(finder Finder) error {
	center, err := t.center("Hover", finder)
	if err != nil {
		return err
	}
	return t.MoveTo(center)
}

// Tap clicks the left button at the center of the first widget matched
// by finder.
func (t *WidgetTester) Tap(finder Finder) error {
	center, err := t.center("Tap", finder)
	if err != nil {
		return err
	}
	return t.TapAt(center)
}

// TapAt moves to pos and clicks the left button.
func (t *WidgetTester) TapAt(pos graphics.Point) error {
	if err := t.MoveTo(pos); err != nil {
		return err
	}
	if err := t.SendMouseDown(input.MouseButtonLeft); err != nil {
		return err
	}
	return t.SendMouseUp(input.MouseButtonLeft)
}

// Drag presses the left button at the center of the first widget matched
// by finder, moves by delta, and releases.
func (t *WidgetTester) Drag(finder Finder, delta graphics.Point) error {
	start, err := t.center("Drag", finder)
	if err != nil {
		return err
	}
	return t.DragFrom(start, delta)
}

// DragFrom presses the left button at start, moves by delta in two steps,
// and releases.
func (t *WidgetTester) DragFrom(start, delta graphics.Point) error {
	if err := t.MoveTo(start); err != nil {
		return err
	}
	if err := t.SendMouseDown(input.MouseButtonLeft); err != nil {
		return err
	}
	half := graphics.Pt(start.X+delta.X/2, start.Y+delta.Y/2)
	if err := t.MoveTo(half); err != nil {
		return err
	}
	if err := t.MoveTo(start.Add(delta)); err != nil {
		return err
	}
	return t.SendMouseUp(input.MouseButtonLeft)
}

// Scroll sends a line-based wheel event.
func (t *WidgetTester) Scroll(dx, dy float64) error {
	if t.window == nil {
		return ErrNotPumped
	}
	t.window.MouseWheel(t.device, input.LineDelta(dx, dy), input.TouchPhaseMoved)
	return nil
}

// SendKey sends one key event with the tester's modifiers.
func (t *WidgetTester) SendKey(code input.KeyCode, state input.ElementState) error {
	if t.window == nil {
		return ErrNotPumped
	}
	t.window.KeyboardInput(t.device, input.KeyEvent{Code: code, State: state, Modifiers: t.mods}, false)
	return nil
}

// PressKey sends a press followed by a release of code.
func (t *WidgetTester) PressKey(code input.KeyCode) error {
	if err := t.SendKey(code, input.Pressed); err != nil {
		return err
	}
	return t.SendKey(code, input.Released)
}

// EnterText commits text through the input method.
func (t *WidgetTester) EnterText(text string) error {
	if t.window == nil {
		return ErrNotPumped
	}
	t.window.Ime(input.ImeEvent{Kind: input.ImeCommit, Text: text})
	return nil
}

func (t *WidgetTester) center(op string, finder Finder) (graphics.Point, error) {
	if t.window == nil {
		return graphics.Point{}, ErrNotPumped
	}
	result := t.Find(finder)
	if !result.Exists() {
		return graphics.Point{}, fmt.Errorf("%s: finder matched no widgets: %s", op, finder.Description())
	}
	rect, ok := result.First().LastLayout()
	if !ok {
		return graphics.Point{}, fmt.Errorf("%s: widget has no layout: %s", op, finder.Description())
	}
	return rect.Center(), nil
}
