package testing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
)

func buildProbes(rec *Recorder) *Probe {
	root := NewProbe("root", rec)
	button := NewProbe("button", rec).WithRect(10, 10, 40, 20).WithHit().Handling(HandleMouseDown)
	box := NewProbe("box", rec).WithRect(60, 10, 40, 40).WithHit()
	return root.Add(button, box)
}

func TestWidgetTester_RequiresPump(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	assert.ErrorIs(t, tester.MoveTo(graphics.Pt(1, 1)), ErrNotPumped)
	assert.ErrorIs(t, tester.Pump(), ErrNotPumped)
	assert.False(t, tester.Find(ByName("x")).Exists())
}

func TestWidgetTester_Tap(t *testing.T) {
	rec := NewRecorder()
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpProbe(buildProbes(rec)))
	rec.Reset()

	require.NoError(t, tester.Tap(ByName("button")))
	assert.Equal(t, []string{
		"button.hover (20,10)",
		"button.mouse_down left (20,10)",
		"button.activate",
		"button.mouse_up left (20,10)",
		"button.deactivate",
	}, rec.Lines())
}

func TestWidgetTester_TapMissingWidget(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpProbe(buildProbes(NewRecorder())))

	err := tester.Tap(ByName("nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `ByName("nope")`)
}

func TestWidgetTester_Drag(t *testing.T) {
	rec := NewRecorder()
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpProbe(buildProbes(rec)))
	rec.Reset()

	require.NoError(t, tester.Drag(ByName("button"), graphics.Pt(50, 0)))
	assert.Equal(t, 2, rec.Count("button.mouse_drag"))
	assert.True(t, rec.Contains("button.mouse_up left (70,10)"))
	assert.False(t, rec.Contains("box.hover"), "hover is frozen while a capture is held")
}

func TestRecorder_Matching(t *testing.T) {
	rec := NewRecorder()
	rec.Record("a", "hover", "(1,2)")
	rec.Record("a", "hover_extra")
	rec.Record("b", "focus")

	assert.Equal(t, 1, rec.Count("a.hover"))
	assert.Equal(t, 1, rec.Index("a.hover_extra"))
	assert.Equal(t, -1, rec.Index("c.focus"))
	assert.Equal(t, []string{"a.hover", "a.hover_extra", "b.focus"}, rec.Calls())
}

func TestParseHandles(t *testing.T) {
	h, err := ParseHandles([]string{"mouse_down", "Keyboard"})
	require.NoError(t, err)
	assert.Equal(t, HandleMouseDown|HandleKeyboard, h)

	h, err = ParseHandles([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, HandleAll, h)

	_, err = ParseHandles([]string{"telepathy"})
	assert.Error(t, err)
}

func TestFinders(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpProbe(buildProbes(NewRecorder())))

	assert.Equal(t, 3, tester.Find(ByType[*Probe]()).Count())
	assert.Equal(t, 1, tester.Find(ByName("box")).Count())
	assert.Panics(t, func() { tester.Find(ByName("nope")).First() })

	hits := tester.Find(ByPredicate("hit probes", func(w core.Widget) bool {
		p, ok := w.(*Probe)
		return ok && p.hit
	}))
	assert.Equal(t, 2, hits.Count())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpProbe(buildProbes(NewRecorder())))
	require.NoError(t, tester.MoveTo(graphics.Pt(70, 20)))

	snap := tester.CaptureSnapshot()
	require.Len(t, snap.Roots, 1)
	root := snap.Roots[0]
	assert.Equal(t, "root", root.Name)
	require.Len(t, root.Children, 2)
	assert.Equal(t, &[4]float64{60, 10, 40, 40}, root.Children[1].Rect)
	assert.True(t, root.Children[1].Hovered)

	path := filepath.Join(t.TempDir(), "probes.snapshot.json")
	require.NoError(t, snap.UpdateFile(path))
	snap.MatchesFile(t, path)

	require.NoError(t, tester.SendMouseDown(input.MouseButtonLeft))
	require.NoError(t, tester.MoveTo(graphics.Pt(20, 20)))
	changed := tester.CaptureSnapshot()
	assert.NotEmpty(t, changed.Diff(snap))

	fake := &fakeT{name: "TestSnapshot"}
	changed.MatchesFile(fake, path)
	assert.True(t, fake.failed)
}

type fakeT struct {
	name   string
	failed bool
}

func (f *fakeT) Helper()               {}
func (f *fakeT) Fatalf(string, ...any) { f.failed = true }
func (f *fakeT) Errorf(string, ...any) { f.failed = true }
func (f *fakeT) Name() string          { return f.name }
