package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// ErrorHandler receives the errors and recovered panics arbor cannot return
// to a caller: widget hooks, dispatch, and redraw.
type ErrorHandler interface {
	HandleError(err *ArborError)
	HandlePanic(err *PanicError)
}

var (
	handlerMu sync.RWMutex
	handler   ErrorHandler = NewLogHandler(false)
)

// SetHandler installs h as the process-wide handler and returns the one it
// replaced. A nil h restores a stderr LogHandler.
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = NewLogHandler(false)
	}
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev := handler
	handler = h
	return prev
}

// Handler returns the installed handler.
func Handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// Report stamps err and hands it to the installed handler.
func Report(err *ArborError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic stamps err and hands it to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// Scope describes the work a deferred Recover guards. Defer its Recover
// method directly:
//
//	defer errors.Scope{Op: "window.MouseInput", Kind: errors.KindDispatch}.Recover()
type Scope struct {
	Op     string
	Kind   ErrorKind
	Widget string
	// OnPanic runs after the panic has been reported.
	OnPanic func(*PanicError)
}

// Recover stops a panic in progress, reports it with the scope's details,
// and calls OnPanic. A zero Kind is reported as KindPanic. It does nothing
// when no panic is in progress.
func (s Scope) Recover() {
	if r := recover(); r != nil {
		s.report(r)
	}
}

func (s Scope) report(r any) {
	kind := s.Kind
	if kind == KindUnknown {
		kind = KindPanic
	}
	err := &PanicError{
		Op:         s.Op,
		Kind:       kind,
		Widget:     s.Widget,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
	ReportPanic(err)
	if s.OnPanic != nil {
		s.OnPanic(err)
	}
}

// CaptureStack returns the calling goroutine's stack, one "function\n\tfile:line"
// entry per frame. Runtime frames and the recovery helpers are left out, so
// for a recovered panic the first entry is the code that panicked.
func CaptureStack() string {
	var pcs [48]uintptr
	n := runtime.Callers(2, pcs[:])
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if !skipFrame(frame.Function) {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

const pkgPath = "github.com/go-drift/arbor/pkg/errors."

var recoveryFrames = map[string]bool{
	pkgPath + "CaptureStack":  true,
	pkgPath + "Scope.Recover": true,
	pkgPath + "Scope.report":  true,
}

func skipFrame(function string) bool {
	return strings.HasPrefix(function, "runtime.") ||
		strings.Contains(function, ".deferwrap") ||
		recoveryFrames[function]
}
