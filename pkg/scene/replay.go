package scene

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	"github.com/go-drift/arbor/pkg/logging"
	arbortest "github.com/go-drift/arbor/pkg/testing"
	"github.com/go-drift/arbor/pkg/window"
)

// Default surface size for scenes that do not set one.
const (
	DefaultWidth  = arbortest.DefaultTestWidth
	DefaultHeight = arbortest.DefaultTestHeight
)

// Step is one replayed event and the callbacks it caused.
type Step struct {
	Event string   `json:"event"`
	Calls []string `json:"calls,omitempty"`
}

// Trace is the result of replaying a scene.
type Trace struct {
	Scene string `json:"scene"`
	// Mount holds the callbacks delivered while mounting and drawing the
	// tree for the first time.
	Mount  []string            `json:"mount,omitempty"`
	Steps  []Step              `json:"steps"`
	Closed bool                `json:"closed,omitempty"`
	Final  *arbortest.Snapshot `json:"final"`
}

// Lines flattens the trace into "name.callback args" lines, prefixed by
// "> event" markers.
func (t *Trace) Lines() []string {
	lines := append([]string(nil), t.Mount...)
	for _, step := range t.Steps {
		lines = append(lines, "> "+step.Event)
		lines = append(lines, step.Calls...)
	}
	if t.Closed {
		lines = append(lines, "window closed")
	}
	return lines
}

// String returns Lines joined by newlines.
func (t *Trace) String() string {
	return strings.Join(t.Lines(), "\n")
}

// closeRecorder lets scenes observe the close shortcut.
type closeRecorder struct {
	rec *arbortest.Recorder
}

func (c closeRecorder) CloseRequested(*window.Window) bool {
	c.rec.Record("window", "close_requested")
	return true
}

// ReplayOption adjusts a replay.
type ReplayOption func(*replayConfig)

type replayConfig struct {
	width, height int
	window        []window.Option
}

// WithDefaultSize sets the surface size used when the scene has none.
func WithDefaultSize(width, height int) ReplayOption {
	return func(c *replayConfig) {
		c.width = width
		c.height = height
	}
}

// WithWindowOptions passes extra options to the window.
func WithWindowOptions(opts ...window.Option) ReplayOption {
	return func(c *replayConfig) {
		c.window = append(c.window, opts...)
	}
}

// Replay mounts the scene and feeds it every event in order. The window
// is redrawn after each event that asked for it. Replay stops early when
// ctx is cancelled or the window closes.
func Replay(ctx context.Context, f *File, opts ...ReplayOption) (*Trace, error) {
	cfg := replayConfig{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(&cfg)
	}
	if f.Width > 0 && f.Height > 0 {
		cfg.width, cfg.height = f.Width, f.Height
	}

	ctx = logging.WithScene(ctx, f.Name)
	log := logging.FromContext(ctx)

	rec := arbortest.NewRecorder()
	root, byName := f.Build(rec)

	winOpts := append([]window.Option{
		window.WithTitle(f.Name),
		window.WithBehavior(closeRecorder{rec: rec}),
		window.WithLogger(*log),
	}, cfg.window...)
	tester := arbortest.NewWidgetTester(winOpts...)
	defer tester.Cleanup()
	tester.SetSize(cfg.width, cfg.height)

	if err := tester.PumpProbe(root); err != nil {
		return nil, fmt.Errorf("mount scene %s: %w", f.Name, err)
	}

	trace := &Trace{Scene: f.Name, Mount: rec.Lines()}
	rec.Reset()
	log.Debug().Int("events", len(f.Events)).Msg("replaying scene")

	for i := range f.Events {
		if err := ctx.Err(); err != nil {
			return trace, err
		}
		e := &f.Events[i]
		if err := apply(tester, e, byName); err != nil {
			return trace, fmt.Errorf("event %d (%s): %w", i+1, e.Describe(), err)
		}
		tester.PumpIfNeeded()

		trace.Steps = append(trace.Steps, Step{Event: e.Describe(), Calls: rec.Lines()})
		rec.Reset()

		if tester.Window().Closed() {
			log.Debug().Int("event", i+1).Msg("window closed")
			trace.Closed = true
			break
		}
	}

	trace.Final = tester.CaptureSnapshot()
	return trace, nil
}

func apply(t *arbortest.WidgetTester, e *Event, byName map[string]*arbortest.Probe) error {
	device := arbortest.DefaultDevice
	if e.Device != 0 {
		device = input.DeviceID(e.Device)
	}
	t.SetDevice(device)
	w := t.Window()

	switch {
	case e.Move != nil:
		return t.MoveTo(graphics.Pt(e.Move[0], e.Move[1]))
	case e.Down != "":
		button, err := input.ParseMouseButton(e.Down)
		if err != nil {
			return err
		}
		return t.SendMouseDown(button)
	case e.Up != "":
		button, err := input.ParseMouseButton(e.Up)
		if err != nil {
			return err
		}
		return t.SendMouseUp(button)
	case e.Leave:
		return t.Leave()
	case e.Scroll != nil:
		return t.Scroll(e.Scroll[0], e.Scroll[1])
	case e.Key != nil:
		code, err := input.ParseKeyCode(e.Key.Code)
		if err != nil {
			return err
		}
		mods, err := input.ParseModifiers(e.Key.Modifiers)
		if err != nil {
			return err
		}
		event := input.KeyEvent{Code: code, Modifiers: mods, Repeat: e.Key.Repeat}
		if e.Key.State != "release" {
			event.State = input.Pressed
			w.KeyboardInput(device, event, e.Key.Synthetic)
		}
		if e.Key.State != "press" && !w.Closed() {
			event.State = input.Released
			w.KeyboardInput(device, event, e.Key.Synthetic)
		}
		return nil
	case e.Text != "":
		return t.EnterText(e.Text)
	case e.Remove != "":
		p, ok := byName[e.Remove]
		if !ok {
			return fmt.Errorf("no node named %q", e.Remove)
		}
		if m, ok := t.Tree().Lookup(p.Instance()); ok {
			t.Tree().Remove(m.ID())
		}
		return nil
	case e.Redraw:
		return t.Pump()
	}
	return nil
}
