package scene

import (
	arbortest "github.com/go-drift/arbor/pkg/testing"
)

// Build turns the scene's node tree into probes recording into rec. The
// returned map indexes every probe by name.
func (f *File) Build(rec *arbortest.Recorder) (*arbortest.Probe, map[string]*arbortest.Probe) {
	byName := make(map[string]*arbortest.Probe)
	root := buildNode(&f.Root, rec, byName)

	// Links are resolved after every probe exists so they may point
	// forward in the tree.
	var link func(n *Node)
	link = func(n *Node) {
		if n.NextFocus != "" {
			if next, ok := byName[n.NextFocus]; ok {
				byName[n.Name].LinkFocusTo(next)
			}
		}
		for i := range n.Children {
			link(&n.Children[i])
		}
	}
	link(&f.Root)

	return root, byName
}

func buildNode(n *Node, rec *arbortest.Recorder, byName map[string]*arbortest.Probe) *arbortest.Probe {
	p := arbortest.NewProbe(n.Name, rec)
	if len(n.Rect) == 4 {
		p.WithRect(n.Rect[0], n.Rect[1], n.Rect[2], n.Rect[3])
	}
	if n.Hit {
		p.WithHit()
	}
	if h, err := arbortest.ParseHandles(n.Handles); err == nil && h != 0 {
		p.Handling(h)
	}
	if n.AcceptFocus {
		p.AcceptingFocus()
	}
	if n.FocusOnClick {
		p.FocusOnClick()
	}
	if c, err := ParseColor(n.Color); err == nil && n.Color != "" {
		p.WithColor(c)
	}
	if n.PanicOn != "" {
		p.PanicOn(n.PanicOn)
	}
	byName[n.Name] = p

	for i := range n.Children {
		p.Add(buildNode(&n.Children[i], rec, byName))
	}
	return p
}
