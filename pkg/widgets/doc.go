// Package widgets provides a small set of reference widgets built on the
// core widget contract.
//
// Widgets are configured with struct literals and mounted by wrapping them
// in a core.WidgetInstance (or by passing them to a window or tester):
//
//	stack := widgets.ColumnOf(8,
//	    &widgets.Label{Content: "Name"},
//	    widgets.ButtonOf("Save", save),
//	)
//
// Layout is deliberately simple: Stack places children one after another
// along an axis, Space fills whatever it is given, and Label and Button
// size themselves to their text.
package widgets
