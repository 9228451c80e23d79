package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/arbor/pkg/core"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the mounted tree: structure, layouts, and registers.
type Snapshot struct {
	Roots    []*Node `json:"roots"`
	Captures int     `json:"captures,omitempty"`
}

// Node is one widget in a Snapshot.
type Node struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Name     string      `json:"name,omitempty"`
	Rect     *[4]float64 `json:"rect,omitempty"`
	Hovered  bool        `json:"hovered,omitempty"`
	Focused  bool        `json:"focused,omitempty"`
	Active   bool        `json:"active,omitempty"`
	Children []*Node     `json:"children,omitempty"`
}

// CaptureSnapshot captures the current tree.
func (t *WidgetTester) CaptureSnapshot() *Snapshot {
	tree := t.Tree()
	if tree == nil {
		return &Snapshot{}
	}
	return CaptureTree(tree)
}

// CaptureTree captures tree.
func CaptureTree(tree *core.Tree) *Snapshot {
	snap := &Snapshot{Captures: tree.CaptureCount()}
	for _, id := range tree.Roots() {
		if root, ok := tree.Widget(id); ok {
			snap.Roots = append(snap.Roots, captureNode(root))
		}
	}
	return snap
}

func captureNode(m core.ManagedWidget) *Node {
	node := &Node{
		ID:      m.ID().String(),
		Type:    m.Instance().TypeName(),
		Hovered: m.PrimaryHover(),
		Focused: m.Focused(),
		Active:  m.Active(),
	}
	guard := m.Lock()
	if n, ok := guard.Widget().(named); ok {
		node.Name = n.Name()
	}
	guard.Release()

	if rect, ok := m.LastLayout(); ok {
		node.Rect = &[4]float64{round2(rect.Left), round2(rect.Top), round2(rect.Width()), round2(rect.Height())}
	}
	for _, child := range m.Children() {
		node.Children = append(node.Children, captureNode(child))
	}
	return node
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// ARBOR_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("ARBOR_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: ARBOR_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: ARBOR_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := s.MarshalIndent()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MarshalIndent returns the snapshot as indented JSON.
func (s *Snapshot) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Diff returns a line diff between this snapshot and other, or the empty
// string if they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := s.MarshalIndent()
	b, _ := other.MarshalIndent()
	if bytes.Equal(a, b) {
		return ""
	}
	return lineDiff(string(b), string(a))
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// lineDiff produces a simple line-oriented diff.
func lineDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}
	return buf.String()
}
