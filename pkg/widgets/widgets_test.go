package widgets_test

import (
	"testing"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/input"
	"github.com/go-drift/arbor/pkg/styles"
	arbortest "github.com/go-drift/arbor/pkg/testing"
	"github.com/go-drift/arbor/pkg/widgets"
	"github.com/go-drift/arbor/pkg/window"
)

func layoutOf(t *testing.T, tester *arbortest.WidgetTester, finder arbortest.Finder) graphics.Rect {
	t.Helper()
	result := tester.Find(finder)
	if !result.Exists() {
		t.Fatalf("no widget matched %s", finder.Description())
	}
	rect, ok := result.First().LastLayout()
	if !ok {
		t.Fatalf("%s has no layout", finder.Description())
	}
	return rect
}

// --- Button tests ---

func TestButton_Tap(t *testing.T) {
	tester := arbortest.NewWidgetTesterWithT(t)

	tapped := 0
	if err := tester.PumpWidget(widgets.ColumnOf(0, widgets.ButtonOf("Click", func() { tapped++ }))); err != nil {
		t.Fatalf("PumpWidget failed: %v", err)
	}

	if err := tester.Tap(arbortest.ByText("Click")); err != nil {
		t.Fatalf("Tap failed: %v", err)
	}
	if tapped != 1 {
		t.Errorf("expected 1 tap, got %d", tapped)
	}

	button := tester.Find(arbortest.ByText("Click")).First()
	if !button.Focused() {
		t.Error("expected pressing the button to focus it")
	}
	if button.Active() {
		t.Error("expected the button to be inactive after release")
	}
}

func TestButton_ReleaseOutsideDoesNotTap(t *testing.T) {
	tester := arbortest.NewWidgetTesterWithT(t)

	tapped := false
	tester.PumpWidget(widgets.ColumnOf(0, widgets.ButtonOf("Click", func() { tapped = true })))

	if err := tester.Drag(arbortest.ByText("Click"), graphics.Pt(300, 300)); err != nil {
		t.Fatalf("Drag failed: %v", err)
	}
	if tapped {
		t.Error("expected a release outside the button not to tap")
	}
}

func TestButton_Disabled(t *testing.T) {
	tester := arbortest.NewWidgetTesterWithT(t)

	tapped := false
	tester.PumpWidget(widgets.ColumnOf(0, &widgets.Button{Label: "Off", Disabled: true, OnTap: func() { tapped = true }}))
	tester.Tap(arbortest.ByText("Off"))
	tester.PressKey(input.KeyTab)

	if tapped {
		t.Error("expected a disabled button not to tap")
	}
	if _, focused := tester.Tree().Focused(); focused {
		t.Error("expected a disabled button to refuse focus")
	}
}

func TestButton_KeyboardActivation(t *testing.T) {
	tester := arbortest.NewWidgetTesterWithT(t)

	var tapped []string
	tester.PumpWidget(widgets.ColumnOf(4,
		widgets.ButtonOf("One", func() { tapped = append(tapped, "one") }),
		widgets.ButtonOf("Two", func() { tapped = append(tapped, "two") }),
	))

	tester.PressKey(input.KeyEnter)
	if len(tapped) != 0 {
		t.Fatalf("expected no tap without focus, got %v", tapped)
	}

	tester.PressKey(input.KeyTab)
	tester.PressKey(input.KeyTab)
	tester.PressKey(input.KeySpace)
	tester.SetModifiers(input.ModShift)
	tester.PressKey(input.KeyTab)
	tester.SetModifiers(0)
	tester.PressKey(input.KeyEnter)

	if len(tapped) != 2 || tapped[0] != "two" || tapped[1] != "one" {
		t.Errorf("expected [two one], got %v", tapped)
	}
}

func TestButton_PaintsHighlightWhileActive(t *testing.T) {
	highlight := graphics.RGB(10, 200, 10)
	tester := arbortest.NewWidgetTesterWithT(t, window.WithStyles(styles.New().With(styles.HighlightColor, highlight)))
	tester.PumpWidget(widgets.ColumnOf(0, widgets.ButtonOf("Hold", nil)))

	rect := layoutOf(t, tester, arbortest.ByText("Hold"))
	tester.MoveTo(rect.Center())
	tester.SendMouseDown(input.MouseButtonLeft)
	tester.Pump()

	corner := graphics.Pt(rect.Left+1, rect.Top+1)
	if got := tester.Surface().At(corner); got != highlight {
		t.Errorf("expected highlight %v while pressed, got %v", highlight, got)
	}

	tester.SendMouseUp(input.MouseButtonLeft)
	tester.Pump()
	if got := tester.Surface().At(corner); got == highlight {
		t.Error("expected the highlight to clear after release")
	}
}

// --- Stack tests ---

func TestStack_Column(t *testing.T) {
	tester := arbortest.NewWidgetTesterWithT(t)
	tester.PumpWidget(widgets.ColumnOf(5,
		&widgets.Space{Width: 30, Height: 10},
		&widgets.Space{Width: 50, Height: 20},
	))

	spaces := tester.Find(arbortest.ByType[*widgets.Space]()).All()
	if len(spaces) != 2 {
		t.Fatalf("expected 2 spaces, got %d", len(spaces))
	}
	first, _ := spaces[0].LastLayout()
	second, _ := spaces[1].LastLayout()
	if first != graphics.RectFromLTWH(0, 0, 30, 10) {
		t.Errorf("unexpected first rect %+v", first)
	}
	if second != graphics.RectFromLTWH(0, 15, 50, 20) {
		t.Errorf("unexpected second rect %+v", second)
	}
}

func TestStack_NestedRowIsOffset(t *testing.T) {
	tester := arbortest.NewWidgetTesterWithT(t)
	tester.PumpWidget(widgets.ColumnOf(0,
		widgets.VSpace(40),
		widgets.RowOf(2, widgets.HSpace(10), &widgets.Label{Content: "hi"}),
	))

	rect := layoutOf(t, tester, arbortest.ByText("hi"))
	if rect.Left != 12 || rect.Top != 40 {
		t.Errorf("expected label at (12,40), got (%g,%g)", rect.Left, rect.Top)
	}
	want := graphics.MeasureText("hi")
	if rect.Size() != want {
		t.Errorf("expected label size %+v, got %+v", want, rect.Size())
	}
}

// --- Label tests ---

func TestLabel_FollowsValue(t *testing.T) {
	tester := arbortest.NewWidgetTesterWithT(t)
	text := core.NewValue("before")
	tester.PumpWidget(widgets.ColumnOf(0, widgets.LabelOf(text)))
	window.Watch(tester.Window(), text)

	text.Set("after!")
	if !tester.Window().NeedsRedraw() {
		t.Fatal("expected a value change to request a redraw")
	}
	tester.Pump()

	rect := layoutOf(t, tester, arbortest.ByText("after!"))
	if rect.Width() != graphics.MeasureText("after!").Width {
		t.Errorf("expected the label to be laid out with the new text, got width %g", rect.Width())
	}
}

func TestSpace_IsNotInteractive(t *testing.T) {
	tester := arbortest.NewWidgetTesterWithT(t)
	tester.PumpWidget(&widgets.Space{Color: graphics.RGB(0, 0, 255)})

	tester.MoveTo(graphics.Pt(10, 10))
	if _, hovered := tester.Tree().Hovered(); hovered {
		t.Error("expected Space never to be hovered")
	}
	if got := tester.Surface().At(graphics.Pt(10, 10)); got != graphics.RGB(0, 0, 255) {
		t.Errorf("expected the space to be filled, got %v", got)
	}
}
