package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/arbor/pkg/core"
)

// Finder locates widgets in a tree.
type Finder interface {
	// Evaluate returns every matching widget in tree pre-order.
	Evaluate(tree *core.Tree) []core.ManagedWidget
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	widgets []core.ManagedWidget
	finder  Finder
}

// Find evaluates finder against the tree under test.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	tree := t.Tree()
	if tree == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{widgets: finder.Evaluate(tree), finder: finder}
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() core.ManagedWidget {
	if len(r.widgets) == 0 {
		desc := "unknown"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic(fmt.Sprintf("Finder found no widgets: %s", desc))
	}
	return r.widgets[0]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []core.ManagedWidget {
	return r.widgets
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.widgets)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.widgets) > 0
}

// collectMatches walks tree in pre-order, locking each widget briefly to
// evaluate match.
func collectMatches(tree *core.Tree, match func(core.Widget) bool) []core.ManagedWidget {
	var out []core.ManagedWidget
	var walk func(core.ManagedWidget)
	walk = func(m core.ManagedWidget) {
		guard := m.Lock()
		matched := match(guard.Widget())
		guard.Release()
		if matched {
			out = append(out, m)
		}
		for _, child := range m.Children() {
			walk(child)
		}
	}
	for _, id := range tree.Roots() {
		if root, ok := tree.Widget(id); ok {
			walk(root)
		}
	}
	return out
}

type typeFinder struct {
	widgetType reflect.Type
}

func (f *typeFinder) Evaluate(tree *core.Tree) []core.ManagedWidget {
	return collectMatches(tree, func(w core.Widget) bool {
		return reflect.TypeOf(w) == f.widgetType
	})
}

func (f *typeFinder) Description() string {
	return fmt.Sprintf("ByType(%s)", f.widgetType)
}

// ByType returns a finder that matches widgets of type T.
func ByType[T core.Widget]() Finder {
	return &typeFinder{widgetType: reflect.TypeFor[T]()}
}

type named interface {
	Name() string
}

type nameFinder struct {
	name string
}

func (f *nameFinder) Evaluate(tree *core.Tree) []core.ManagedWidget {
	return collectMatches(tree, func(w core.Widget) bool {
		n, ok := w.(named)
		return ok && n.Name() == f.name
	})
}

func (f *nameFinder) Description() string {
	return fmt.Sprintf("ByName(%q)", f.name)
}

// ByName returns a finder that matches widgets with a Name method returning
// name, such as probes.
func ByName(name string) Finder {
	return &nameFinder{name: name}
}

type texted interface {
	Text() string
}

type textFinder struct {
	text     string
	contains bool
}

func (f *textFinder) Evaluate(tree *core.Tree) []core.ManagedWidget {
	return collectMatches(tree, func(w core.Widget) bool {
		t, ok := w.(texted)
		if !ok {
			return false
		}
		if f.contains {
			return strings.Contains(t.Text(), f.text)
		}
		return t.Text() == f.text
	})
}

func (f *textFinder) Description() string {
	if f.contains {
		return fmt.Sprintf("ByTextContaining(%q)", f.text)
	}
	return fmt.Sprintf("ByText(%q)", f.text)
}

// ByText returns a finder that matches widgets with a Text method
// returning exactly text.
func ByText(text string) Finder {
	return &textFinder{text: text}
}

// ByTextContaining returns a finder that matches widgets whose Text
// contains substring.
func ByTextContaining(substring string) Finder {
	return &textFinder{text: substring, contains: true}
}

type predicateFinder struct {
	fn   func(core.Widget) bool
	desc string
}

func (f *predicateFinder) Evaluate(tree *core.Tree) []core.ManagedWidget {
	return collectMatches(tree, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches widgets satisfying fn.
func ByPredicate(desc string, fn func(core.Widget) bool) Finder {
	return &predicateFinder{fn: fn, desc: desc}
}
