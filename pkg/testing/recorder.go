package testing

import (
	"slices"
	"strings"
	"sync"
)

// Recorder collects callback lines from probes in call order. It is safe
// for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends "name.callback", followed by args separated by spaces.
func (r *Recorder) Record(name, callback string, args ...string) {
	line := name + "." + callback
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// Lines returns every recorded line.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.lines)
}

// Calls returns the recorded lines without their arguments.
func (r *Recorder) Calls() []string {
	lines := r.Lines()
	for i, line := range lines {
		if name, _, ok := strings.Cut(line, " "); ok {
			lines[i] = name
		}
	}
	return lines
}

// Contains reports whether a line equal to call, or starting with call
// followed by arguments, was recorded.
func (r *Recorder) Contains(call string) bool {
	return r.Count(call) > 0
}

// Count returns how many lines match call, as in Contains.
func (r *Recorder) Count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, line := range r.lines {
		if line == call || strings.HasPrefix(line, call+" ") {
			n++
		}
	}
	return n
}

// Index returns the position of the first line matching call, or -1.
func (r *Recorder) Index(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.IndexFunc(r.lines, func(line string) bool {
		return line == call || strings.HasPrefix(line, call+" ")
	})
}

// Reset forgets every recorded line.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
