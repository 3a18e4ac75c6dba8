package errors

import (
	"errors"
	"fmt"
)

// Class buckets pipeline failures by how the run should react.
// Everything except ClassFatalIO is recoverable: the offending unit
// (one definition, one symbol, one column) is skipped and the run
// continues.
type Class string

const (
	// ClassMissingComponent marks a derived series whose inputs are
	// not present in the grid.
	ClassMissingComponent Class = "MISSING_COMPONENT"
	// ClassDegenerateSignal marks a column too short or too sparse
	// for the requested transform.
	ClassDegenerateSignal Class = "DEGENERATE_SIGNAL"
	// ClassEmptyInput marks a stage that received no usable rows.
	ClassEmptyInput Class = "EMPTY_INPUT"
	// ClassWorkerFailure marks a feature task that panicked or
	// returned an error for one symbol.
	ClassWorkerFailure Class = "WORKER_FAILURE"
	// ClassFatalIO marks unreadable staging input or unwritable
	// output. The only class that aborts the whole run.
	ClassFatalIO Class = "FATAL_IO"
)

// PipelineError is a classified error raised by a pipeline unit.
type PipelineError struct {
	Class   Class
	Unit    string // definition name, column, source or file involved
	Message string
	Err     error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Class, e.Unit, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Class, e.Unit, e.Message)
}

// Unwrap returns the wrapped cause, if any
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// New creates a classified error for the given unit
func New(class Class, unit, message string) *PipelineError {
	return &PipelineError{Class: class, Unit: unit, Message: message}
}

// Wrap creates a classified error around an underlying cause
func Wrap(class Class, unit, message string, err error) *PipelineError {
	return &PipelineError{Class: class, Unit: unit, Message: message, Err: err}
}

// MissingComponent reports which input column a definition lacked
func MissingComponent(definition, component string) *PipelineError {
	return &PipelineError{
		Class:   ClassMissingComponent,
		Unit:    definition,
		Message: fmt.Sprintf("required component %q not in grid", component),
	}
}

// DegenerateSignal reports a column unfit for a transform
func DegenerateSignal(column, reason string) *PipelineError {
	return &PipelineError{Class: ClassDegenerateSignal, Unit: column, Message: reason}
}

// EmptyInput reports a stage with nothing to process
func EmptyInput(stage, reason string) *PipelineError {
	return &PipelineError{Class: ClassEmptyInput, Unit: stage, Message: reason}
}

// WorkerFailure wraps a per-symbol task error
func WorkerFailure(symbol string, err error) *PipelineError {
	return &PipelineError{Class: ClassWorkerFailure, Unit: symbol, Message: "feature task failed", Err: err}
}

// FatalIO wraps an IO error that must abort the run
func FatalIO(unit string, err error) *PipelineError {
	return &PipelineError{Class: ClassFatalIO, Unit: unit, Message: "io failure", Err: err}
}

// ClassOf extracts the class from an error chain. Unclassified
// errors are treated as fatal so that unexpected failures never get
// silently skipped.
func ClassOf(err error) Class {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Class
	}
	return ClassFatalIO
}

// IsFatal reports whether err must abort the run
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return ClassOf(err) == ClassFatalIO
}

// IsRecoverable reports whether the run may continue past err
func IsRecoverable(err error) bool {
	return err != nil && !IsFatal(err)
}
