// Package errors provides structured error handling for arbor.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindTree indicates a widget tree mutation or lookup failure.
	KindTree
	// KindDispatch indicates an input dispatch failure.
	KindDispatch
	// KindRender indicates a layout or redraw failure.
	KindRender
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates a configuration error.
	KindConfig
	// KindScene indicates a scene file error.
	KindScene
)

func (k ErrorKind) String() string {
	switch k {
	case KindTree:
		return "tree"
	case KindDispatch:
		return "dispatch"
	case KindRender:
		return "render"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	case KindScene:
		return "scene"
	default:
		return "unknown"
	}
}

// Sentinel errors. Compare with Is; ArborError unwraps to them.
var (
	// ErrUnknownParent is returned when inserting under a parent that is not
	// mounted in the tree.
	ErrUnknownParent = stderrors.New("parent is not mounted")
	// ErrStaleWidget is returned when an id refers to a removed node.
	ErrStaleWidget = stderrors.New("widget is not mounted")
	// ErrAlreadyMounted is returned when inserting an instance that is
	// already mounted in the tree.
	ErrAlreadyMounted = stderrors.New("widget is already mounted")
	// ErrNoParent is returned when an operation needs a parent the node
	// does not have, such as inserting a sibling next to a root.
	ErrNoParent = stderrors.New("widget has no parent")
	// ErrMultipleRoots is returned when a single-root tree would end up with more
	// than one root.
	ErrMultipleRoots = stderrors.New("window already has a root")
	// ErrUnsupportedScene is returned for scene files with an incompatible
	// format version.
	ErrUnsupportedScene = stderrors.New("unsupported scene version")
)

// ArborError represents a structured error.
type ArborError struct {
	// Op is the operation that failed (e.g., "core.Tree.Insert").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Widget describes the widget involved, if any.
	Widget string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ArborError) Error() string {
	if e.Widget != "" {
		return fmt.Sprintf("%s [%s] widget=%s: %v", e.Op, e.Kind, e.Widget, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ArborError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "window.MouseInput").
	Op string
	// Kind is the category of work that panicked.
	Kind ErrorKind
	// Widget describes the widget whose hook panicked, when known.
	Widget string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" && e.Widget != "" {
		return fmt.Sprintf("panic in %s widget=%s: %v", e.Op, e.Widget, e.Value)
	}
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// New returns an ArborError for op wrapping err.
func New(op string, kind ErrorKind, err error) *ArborError {
	return &ArborError{Op: op, Kind: kind, Err: err}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
