// Package render prints replay traces and widget trees for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/go-drift/arbor/pkg/scene"
	arbortest "github.com/go-drift/arbor/pkg/testing"
)

// Printer writes traces and trees to Out.
type Printer struct {
	Out io.Writer

	title  *color.Color
	event  *color.Color
	widget *color.Color
	faint  *color.Color
	warn   *color.Color
}

// NewPrinter returns a printer. Colors are only emitted when useColor is
// set.
func NewPrinter(out io.Writer, useColor bool) *Printer {
	p := &Printer{
		Out:    out,
		title:  color.New(color.Bold, color.Underline),
		event:  color.New(color.FgHiYellow),
		widget: color.New(color.FgCyan),
		faint:  color.New(color.Faint),
		warn:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.title, p.event, p.widget, p.faint, p.warn} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// UseColor resolves an "auto", "always", or "never" setting.
func UseColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return !color.NoColor
}

// Trace prints one replayed scene.
func (p *Printer) Trace(t *scene.Trace) {
	_, _ = p.title.Fprintln(p.Out, t.Scene)
	if len(t.Mount) > 0 {
		_, _ = p.event.Fprintln(p.Out, "> mount")
		p.calls(t.Mount)
	}
	for _, step := range t.Steps {
		_, _ = p.event.Fprintln(p.Out, "> "+step.Event)
		if len(step.Calls) == 0 {
			_, _ = p.faint.Fprintln(p.Out, "  (no callbacks)")
			continue
		}
		p.calls(step.Calls)
	}
	if t.Closed {
		_, _ = p.warn.Fprintln(p.Out, "window closed")
	}
	_, _ = fmt.Fprintln(p.Out)
}

func (p *Printer) calls(lines []string) {
	for _, line := range lines {
		name, rest, _ := strings.Cut(line, ".")
		_, _ = fmt.Fprint(p.Out, "  ")
		_, _ = p.widget.Fprint(p.Out, name)
		_, _ = fmt.Fprintln(p.Out, "."+rest)
	}
}

// Error prints a failed scene.
func (p *Printer) Error(name string, err error) {
	_, _ = p.title.Fprintln(p.Out, name)
	_, _ = p.warn.Fprint(p.Out, "error: ")
	_, _ = fmt.Fprintln(p.Out, err)
	_, _ = fmt.Fprintln(p.Out)
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Tree prints a snapshot as a table, one row per widget, indented by
// depth.
func (p *Printer) Tree(snap *arbortest.Snapshot) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(p.title.Sprint("ID"), p.title.Sprint("Widget"), p.title.Sprint("Type"), p.title.Sprint("Rect"), p.title.Sprint("State"))

	var walk func(n *arbortest.Node, depth int)
	walk = func(n *arbortest.Node, depth int) {
		name := n.Name
		if name == "" {
			name = "-"
		}
		tbl.AddRow(n.ID, strings.Repeat("  ", depth)+p.widget.Sprint(name), n.Type, formatRect(n.Rect), p.faint.Sprint(state(n)))
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	for _, root := range snap.Roots {
		walk(root, 0)
	}
	_, _ = fmt.Fprintln(p.Out, tbl)
	if snap.Captures > 0 {
		_, _ = p.faint.Fprintf(p.Out, "%d active capture(s)\n", snap.Captures)
	}
}

func formatRect(r *[4]float64) string {
	if r == nil {
		return "-"
	}
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func state(n *arbortest.Node) string {
	var flags []string
	if n.Hovered {
		flags = append(flags, "hovered")
	}
	if n.Focused {
		flags = append(flags, "focused")
	}
	if n.Active {
		flags = append(flags, "active")
	}
	return strings.Join(flags, " ")
}
