// Package testing drives a widget tree through a real window without a
// platform layer.
//
// # Quick Start
//
// Mount a widget, send input, and assert on what the widgets saw:
//
//	func TestButton(t *testing.T) {
//	    tester := arbortest.NewWidgetTesterWithT(t)
//	    rec := arbortest.NewRecorder()
//	    root := arbortest.NewProbe("root", rec).WithRect(0, 0, 200, 100)
//	    ok := arbortest.NewProbe("ok", rec).WithRect(10, 10, 50, 20).WithHit().Handling(arbortest.HandleMouseDown)
//	    root.Add(ok)
//
//	    tester.PumpWidget(root)
//	    tester.Tap(arbortest.ByName("ok"))
//
//	    if !rec.Contains("ok.mouse_up") {
//	        t.Error("expected the button to receive the release")
//	    }
//	}
//
// # Probes
//
// A Probe is a widget with a fixed rectangle that records every callback it
// receives as a "name.callback" line. Probes can be told to pass hit tests,
// handle specific events, accept focus, or panic, which makes them suitable
// for exercising dispatch rules directly.
//
// # Snapshot Testing
//
// Capture and compare the mounted tree, including layouts and registers:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/button.snapshot.json")
//
// Update snapshots with:
//
//	ARBOR_UPDATE_SNAPSHOTS=1 go test ./...
package testing
