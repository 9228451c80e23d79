package window

import (
	"github.com/rs/zerolog"

	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/styles"
)

// Behavior lets the application react to window-level requests.
type Behavior interface {
	// CloseRequested is called when the user asks to close the window, for
	// example with the primary+W shortcut. Returning false keeps the window
	// open.
	CloseRequested(w *Window) bool
}

// Settings configures a Window.
type Settings struct {
	Title  string
	Width  int
	Height int
	// Styles are attached to the root widget.
	Styles styles.Styles
	// Background fills the surface before the root is drawn. Fully
	// transparent backgrounds are skipped.
	Background graphics.Color
	// CloseShortcut enables closing the window with primary+W when no widget
	// handles the key release.
	CloseShortcut bool
	// TabNavigation moves focus on unhandled Tab and Shift+Tab presses.
	TabNavigation bool
	Behavior      Behavior
	Logger        zerolog.Logger
}

// DefaultSettings returns the settings used when no options are given.
func DefaultSettings() Settings {
	return Settings{
		Title:         "arbor",
		Width:         800,
		Height:        600,
		Background:    graphics.ColorWhite,
		CloseShortcut: true,
		TabNavigation: true,
		Logger:        zerolog.Nop(),
	}
}

// Option modifies Settings.
type Option func(*Settings)

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(s *Settings) {
		s.Title = title
	}
}

// WithSize sets the initial surface size in pixels.
func WithSize(width, height int) Option {
	return func(s *Settings) {
		s.Width = width
		s.Height = height
	}
}

// WithStyles attaches styles to the root widget.
func WithStyles(st styles.Styles) Option {
	return func(s *Settings) {
		s.Styles = s.Styles.Merge(st)
	}
}

// WithBackground sets the background color.
func WithBackground(c graphics.Color) Option {
	return func(s *Settings) {
		s.Background = c
	}
}

// WithCloseShortcut enables or disables primary+W.
func WithCloseShortcut(enabled bool) Option {
	return func(s *Settings) {
		s.CloseShortcut = enabled
	}
}

// WithTabNavigation enables or disables Tab focus traversal.
func WithTabNavigation(enabled bool) Option {
	return func(s *Settings) {
		s.TabNavigation = enabled
	}
}

// WithBehavior sets the window behavior.
func WithBehavior(b Behavior) Option {
	return func(s *Settings) {
		s.Behavior = b
	}
}

// WithLogger sets the logger for the window and its tree.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Settings) {
		s.Logger = log
	}
}
