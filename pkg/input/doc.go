// Package input defines the platform event payloads a window driver hands to
// the dispatch engine: device identifiers, mouse buttons, keyboard and IME
// events, and scroll deltas.
//
// The types are deliberately plain values. They carry no references to the
// widget tree and can be constructed freely by drivers, tests, and replay
// tooling.
package input
