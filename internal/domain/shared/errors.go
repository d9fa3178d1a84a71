package shared

import (
	"errors"
	"fmt"
)

// ErrBusy is matched by BusyError through errors.Is
var ErrBusy = errors.New("controller busy")

// ValidationError reports a caller-supplied parameter that is out of bounds.
// It is returned before any state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BusyError is returned when an operation requiring Idle is invoked while
// an excavation is still active
type BusyError struct {
	State string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("controller busy: excavation is %s", e.State)
}

func (e *BusyError) Is(target error) bool {
	return target == ErrBusy
}

func NewBusyError(state string) *BusyError {
	return &BusyError{State: state}
}

// DecompositionError means the world could not be queried while building the
// mining queue. It is fatal to the request.
type DecompositionError struct {
	Cell Coordinate
	Err  error
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("decomposition failed at %s: %v", e.Cell, e.Err)
}

func (e *DecompositionError) Unwrap() error {
	return e.Err
}

func NewDecompositionError(cell Coordinate, err error) *DecompositionError {
	return &DecompositionError{Cell: cell, Err: err}
}

// TransientCellError describes why a single cell was skipped. It never
// propagates past the excavation loop.
type TransientCellError struct {
	Cell   Coordinate
	Reason string
	Err    error
}

func (e *TransientCellError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cell %s skipped: %s", e.Cell, e.Reason)
	}
	return fmt.Sprintf("cell %s skipped: %s: %v", e.Cell, e.Reason, e.Err)
}

func (e *TransientCellError) Unwrap() error {
	return e.Err
}

func NewTransientCellError(cell Coordinate, reason string, err error) *TransientCellError {
	return &TransientCellError{Cell: cell, Reason: reason, Err: err}
}
