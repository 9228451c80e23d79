// Package scene loads YAML scene files and replays them against a window.
//
// A scene describes a tree of probe widgets and a script of platform
// events. Replaying a scene mounts the tree in a window, feeds it the
// events in order, and returns the callbacks each probe received:
//
//	version: v1.0.0
//	width: 200
//	height: 100
//	root:
//	  name: root
//	  children:
//	    - name: ok
//	      rect: [10, 10, 50, 20]
//	      hit: true
//	      handles: [mouse_down]
//	events:
//	  - move: [20, 20]
//	  - down: left
//	  - up: left
//
// Only major version v1 is understood.
package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	arbortest "github.com/go-drift/arbor/pkg/testing"
)

// SupportedMajor is the scene format major version this package reads.
const SupportedMajor = "v1"

// File is a parsed scene file.
type File struct {
	// Name defaults to the file name when loaded with LoadFile.
	Name    string  `yaml:"name,omitempty"`
	Version string  `yaml:"version"`
	Width   int     `yaml:"width,omitempty"`
	Height  int     `yaml:"height,omitempty"`
	Root    Node    `yaml:"root"`
	Events  []Event `yaml:"events,omitempty"`
}

// Node describes one probe widget.
type Node struct {
	Name         string    `yaml:"name"`
	Rect         []float64 `yaml:"rect,omitempty"`
	Hit          bool      `yaml:"hit,omitempty"`
	Handles      []string  `yaml:"handles,omitempty"`
	AcceptFocus  bool      `yaml:"accept_focus,omitempty"`
	FocusOnClick bool      `yaml:"focus_on_click,omitempty"`
	NextFocus    string    `yaml:"next_focus,omitempty"`
	Color        string    `yaml:"color,omitempty"`
	PanicOn      string    `yaml:"panic_on,omitempty"`
	Children     []Node    `yaml:"children,omitempty"`
}

// Key is the payload of a key event.
type Key struct {
	Code string `yaml:"code"`
	// State is "press", "release", or "tap" (press then release, the
	// default).
	State     string   `yaml:"state,omitempty"`
	Modifiers []string `yaml:"mods,omitempty"`
	Repeat    bool     `yaml:"repeat,omitempty"`
	Synthetic bool     `yaml:"synthetic,omitempty"`
}

// Event is one step of a scene script. Exactly one action field must be
// set; Device applies to pointer and key actions.
type Event struct {
	Device uint64 `yaml:"device,omitempty"`

	Move   []float64 `yaml:"move,omitempty"`
	Down   string    `yaml:"down,omitempty"`
	Up     string    `yaml:"up,omitempty"`
	Leave  bool      `yaml:"leave,omitempty"`
	Scroll []float64 `yaml:"scroll,omitempty"`
	Key    *Key      `yaml:"key,omitempty"`
	Text   string    `yaml:"text,omitempty"`
	Remove string    `yaml:"remove,omitempty"`
	Redraw bool      `yaml:"redraw,omitempty"`
}

// Load parses a scene from r and validates it.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scene.Load", errors.KindScene, fmt.Errorf("empty scene"))
		}
		return nil, errors.New("scene.Load", errors.KindScene, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses the scene at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("scene.LoadFile", errors.KindScene, err)
	}
	f, err := Load(bytes.NewReader(data))
	if err != nil {
		var arborErr *errors.ArborError
		if errors.As(err, &arborErr) {
			arborErr.Widget = path
		}
		return nil, err
	}
	if f.Name == "" {
		f.Name = baseName(path)
	}
	return f, nil
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return strings.TrimSuffix(strings.TrimSuffix(path, ".yaml"), ".yml")
}

// Validate checks the version, node names, rectangles, focus links, and
// that each event has exactly one action.
func (f *File) Validate() error {
	const op = "scene.Validate"

	version := f.Version
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return errors.New(op, errors.KindScene, fmt.Errorf("%w: invalid version %q", errors.ErrUnsupportedScene, f.Version))
	}
	if major := semver.Major(version); major != SupportedMajor {
		return errors.New(op, errors.KindScene, fmt.Errorf("%w: version %s, want %s.x", errors.ErrUnsupportedScene, f.Version, SupportedMajor))
	}
	if f.Width < 0 || f.Height < 0 {
		return errors.New(op, errors.KindScene, fmt.Errorf("negative scene size %dx%d", f.Width, f.Height))
	}

	names := make(map[string]bool)
	var links []*Node
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n.Name == "" {
			return fmt.Errorf("node without a name")
		}
		if names[n.Name] {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		names[n.Name] = true
		if len(n.Rect) != 0 && len(n.Rect) != 4 {
			return fmt.Errorf("node %q: rect needs 4 numbers, got %d", n.Name, len(n.Rect))
		}
		if _, err := arbortest.ParseHandles(n.Handles); err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		if n.Color != "" {
			if _, err := ParseColor(n.Color); err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
		}
		if n.NextFocus != "" {
			links = append(links, n)
		}
		for i := range n.Children {
			if err := walk(&n.Children[i]); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(&f.Root); err != nil {
		return errors.New(op, errors.KindScene, err)
	}
	for _, n := range links {
		if !names[n.NextFocus] {
			return errors.New(op, errors.KindScene, fmt.Errorf("node %q: next_focus %q does not exist", n.Name, n.NextFocus))
		}
	}

	for i, e := range f.Events {
		if err := e.validate(names); err != nil {
			return errors.New(op, errors.KindScene, fmt.Errorf("event %d: %w", i+1, err))
		}
	}
	return nil
}

func (e *Event) actions() int {
	n := 0
	for _, set := range []bool{
		e.Move != nil, e.Down != "", e.Up != "", e.Leave, e.Scroll != nil,
		e.Key != nil, e.Text != "", e.Remove != "", e.Redraw,
	} {
		if set {
			n++
		}
	}
	return n
}

func (e *Event) validate(names map[string]bool) error {
	if n := e.actions(); n != 1 {
		return fmt.Errorf("want exactly one action, got %d", n)
	}
	switch {
	case e.Move != nil && len(e.Move) != 2:
		return fmt.Errorf("move needs 2 numbers")
	case e.Scroll != nil && len(e.Scroll) != 2:
		return fmt.Errorf("scroll needs 2 numbers")
	case e.Down != "":
		if _, err := input.ParseMouseButton(e.Down); err != nil {
			return err
		}
	case e.Up != "":
		if _, err := input.ParseMouseButton(e.Up); err != nil {
			return err
		}
	case e.Key != nil:
		if _, err := input.ParseKeyCode(e.Key.Code); err != nil {
			return err
		}
		if _, err := input.ParseModifiers(e.Key.Modifiers); err != nil {
			return err
		}
		switch e.Key.State {
		case "", "tap", "press", "release":
		default:
			return fmt.Errorf("unknown key state %q", e.Key.State)
		}
	case e.Remove != "":
		if !names[e.Remove] {
			return fmt.Errorf("remove: no node named %q", e.Remove)
		}
	}
	return nil
}

// Describe returns a short, stable description of the event, used in
// traces.
func (e *Event) Describe() string {
	switch {
	case e.Move != nil:
		return fmt.Sprintf("move %s,%s", formatFloat(e.Move[0]), formatFloat(e.Move[1]))
	case e.Down != "":
		return "down " + e.Down
	case e.Up != "":
		return "up " + e.Up
	case e.Leave:
		return "leave"
	case e.Scroll != nil:
		return fmt.Sprintf("scroll %s,%s", formatFloat(e.Scroll[0]), formatFloat(e.Scroll[1]))
	case e.Key != nil:
		desc := "key " + e.Key.Code
		if len(e.Key.Modifiers) > 0 {
			desc = "key " + strings.Join(e.Key.Modifiers, "+") + "+" + e.Key.Code
		}
		if e.Key.State != "" && e.Key.State != "tap" {
			desc += " " + e.Key.State
		}
		return desc
	case e.Text != "":
		return "text " + strconv.Quote(e.Text)
	case e.Remove != "":
		return "remove " + e.Remove
	case e.Redraw:
		return "redraw"
	}
	return "noop"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseColor parses "#rrggbb" or "#aarrggbb".
func ParseColor(s string) (graphics.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 6:
		hex = "ff" + hex
	case 8:
	default:
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return graphics.Color(v), nil
}
