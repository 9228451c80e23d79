// Package window drives a widget tree from platform events.
//
// A Window owns one core.Tree with exactly one root. The platform layer
// calls one method per event category (KeyboardInput, CursorMoved,
// MouseInput, and so on) from a single goroutine; the window resolves the
// target widget, bubbles the event up the parent chain, and maintains the
// hover, focus, active, and capture registers.
package window

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/graphics"
)

// Window is the dispatch engine for one widget tree.
type Window struct {
	settings Settings
	tree     *core.Tree
	root     core.ManagedWidget
	log      zerolog.Logger

	cursor    graphics.Point
	hasCursor bool

	needsRedraw atomic.Bool
	closed      atomic.Bool

	watchMu  sync.Mutex
	unwatch  []func()
	onRedraw func()
}

// New mounts root in a new tree and returns its window.
func New(root *core.WidgetInstance, opts ...Option) (*Window, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	w := &Window{
		settings: settings,
		log:      settings.Logger.With().Str("component", "window").Str("title", settings.Title).Logger(),
	}
	w.tree = core.NewTree(core.WithHost(w), core.WithSingleRoot(), core.WithLogger(settings.Logger.With().Str("component", "tree").Logger()))
	if err := w.SetRoot(root); err != nil {
		return nil, err
	}
	return w, nil
}

// SetRoot replaces the root widget. The previous root and its descendants
// are unmounted first.
func (w *Window) SetRoot(root *core.WidgetInstance) error {
	if !w.root.IsZero() {
		w.tree.Remove(w.root.ID())
		w.root = core.ManagedWidget{}
	}
	managed, err := w.tree.InsertRoot(root)
	if err != nil {
		return err
	}
	if w.settings.Styles.Len() > 0 {
		managed.AttachStyles(w.settings.Styles)
	}
	w.root = managed
	w.SetNeedsRedraw()
	w.log.Debug().Stringer("root", managed).Msg("root mounted")
	return nil
}

// Tree returns the window's tree. It accepts a single root, so use SetRoot
// to replace the root rather than inserting another.
func (w *Window) Tree() *core.Tree {
	return w.tree
}

// Root returns the root widget.
func (w *Window) Root() core.ManagedWidget {
	return w.root
}

// Settings returns the settings the window was created with.
func (w *Window) Settings() Settings {
	return w.settings
}

// SetNeedsRedraw marks the window as needing a redraw. It is safe to call
// from any goroutine.
func (w *Window) SetNeedsRedraw() {
	if !w.needsRedraw.Swap(true) {
		w.watchMu.Lock()
		fn := w.onRedraw
		w.watchMu.Unlock()
		if fn != nil {
			fn()
		}
	}
}

// NeedsRedraw reports whether anything changed since the last Redraw.
func (w *Window) NeedsRedraw() bool {
	return w.needsRedraw.Load()
}

// OnRedrawRequested sets a callback invoked when the window goes from clean
// to needing a redraw. It may run on any goroutine.
func (w *Window) OnRedrawRequested(fn func()) {
	w.watchMu.Lock()
	defer w.watchMu.Unlock()
	w.onRedraw = fn
}

// Closed reports whether a close request was accepted.
func (w *Window) Closed() bool {
	return w.closed.Load()
}

// CursorPosition returns the last known cursor position.
func (w *Window) CursorPosition() (graphics.Point, bool) {
	return w.cursor, w.hasCursor
}

// Watch marks w as needing a redraw whenever v changes.
func Watch[T any](w *Window, v *core.Value[T]) {
	remove := v.AddListener(func(T) {
		w.SetNeedsRedraw()
	})
	w.watchMu.Lock()
	defer w.watchMu.Unlock()
	w.unwatch = append(w.unwatch, remove)
}

// Close unmounts every widget and stops watching values.
func (w *Window) Close() {
	w.watchMu.Lock()
	unwatch := w.unwatch
	w.unwatch = nil
	w.watchMu.Unlock()
	for _, remove := range unwatch {
		remove()
	}
	w.tree.Clear()
	w.root = core.ManagedWidget{}
	w.closed.Store(true)
}

// dispatchScope guards one platform event. A panicking widget leaves its
// queued register changes unapplied; the window is marked for redraw so the
// host repaints whatever state the tree was left in.
func (w *Window) dispatchScope(op string) errors.Scope {
	return errors.Scope{
		Op:   op,
		Kind: errors.KindDispatch,
		OnPanic: func(err *errors.PanicError) {
			w.log.Warn().Str("op", op).Interface("value", err.Value).Msg("event dropped after panic")
			w.SetNeedsRedraw()
		},
	}
}

// requestClose asks the behavior whether the window may close.
func (w *Window) requestClose() {
	allow := true
	if w.settings.Behavior != nil {
		allow = w.settings.Behavior.CloseRequested(w)
	}
	w.log.Debug().Bool("allowed", allow).Msg("close requested")
	if allow {
		w.closed.Store(true)
	}
}

// Redraw lays out the root to fill surface and paints the tree onto it.
func (w *Window) Redraw(surface *graphics.Surface) {
	defer errors.Scope{Op: "window.Redraw", Kind: errors.KindRender}.Recover()
	if w.root.IsZero() {
		return
	}

	w.needsRedraw.Store(false)
	w.tree.ResetRenderOrder()
	w.tree.ResetChildLayouts(w.root.ID())

	layout := core.NewLayoutContext(w.root, surface)
	size := func() graphics.Size {
		guard := w.root.Lock()
		defer guard.Release()
		return guard.Widget().Layout(graphics.Tight(surface.Size()), layout)
	}()
	rect := graphics.RectFromOriginSize(graphics.Point{}, size)
	layout.Place(rect)

	if w.settings.Background.Alpha() > 0 {
		surface.Fill(w.settings.Background)
	}
	paint := core.NewGraphicsContext(w.root, surface.Region(rect))
	paint.Redraw()

	layout.ApplyPendingState()
	paint.ApplyPendingState()
}
