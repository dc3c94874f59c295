// Package failure defines the failure taxonomy for compdiff.
//
// Every error surfaced by a comparison maps to exactly one Class, which
// decides the process exit code and how the failure is reported.
package failure

import (
	"errors"
	"fmt"
)

// Class is a stable failure category.
type Class string

const (
	// Mismatch means the normalized reference and candidate values differ.
	Mismatch Class = "MISMATCH"
	// Process means an external program could not be run or produced
	// output that cannot be extracted (e.g. no separator line).
	Process Class = "PROCESS"
	// Directive means a self-describing fixture header could not be read.
	Directive Class = "DIRECTIVE"
	// Config means flags or the configuration file are invalid.
	Config Class = "CONFIG"
	// Internal covers log and report I/O.
	Internal Class = "INTERNAL"
)

// ExitCode returns the process exit code for this class.
func (c Class) ExitCode() int {
	if c == Config {
		return 2
	}
	return 1
}

// Error is the structured error type for all harness failures.
type Error struct {
	Class   Class
	Fixture string // fixture path, empty when not fixture-specific
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Fixture != "" {
		return fmt.Sprintf("%s %s: %s", e.Class, e.Fixture, msg)
	}
	return fmt.Sprintf("%s: %s", e.Class, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error.
func New(class Class, fixture, message string) *Error {
	return &Error{Class: class, Fixture: fixture, Message: message}
}

// Wrap creates a new Error wrapping cause.
func Wrap(class Class, fixture, message string, cause error) *Error {
	return &Error{Class: class, Fixture: fixture, Message: message, Cause: cause}
}

// ClassOf returns the class of the first *Error in err's chain,
// or Internal when err carries none.
func ClassOf(err error) Class {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Class
	}
	return Internal
}

// Is reports whether err carries a failure of the given class.
func Is(err error, class Class) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Class == class
}
