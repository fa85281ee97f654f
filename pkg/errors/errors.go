// Package errors provides structured error reporting for render roots.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates an invalid or unreadable configuration.
	KindConfig
	// KindLifecycle indicates a failure inside a component lifecycle hook.
	KindLifecycle
	// KindRender indicates a failure inside the tree renderer.
	KindRender
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindLifecycle:
		return "lifecycle"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// SchedulerError represents a structured error raised around the update
// scheduler.
type SchedulerError struct {
	// Op is the operation that failed (e.g., "config.Resolve").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Component is the ID of the component involved, if any.
	Component string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SchedulerError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("%s [%s] component=%s: %v", e.Op, e.Kind, e.Component, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SchedulerError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic. A PanicError is re-raised as the
// panic value once reported, so outer frames can tell it has been seen.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.Component.ForceUpdate").
	Op string
	// Kind tells whether a lifecycle hook or the renderer panicked.
	Kind ErrorKind
	// Component is the ID of the component whose render cycle panicked.
	Component string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s [%s]: %v", e.Op, e.Kind, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ErrorHandler receives errors reported by render roots.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *SchedulerError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
