package tfmutate

import (
	"errors"
	"fmt"
)

// ErrParameterNotFound marks an update attempted against an absent
// parameter. It is reported as a no-op, never as a fatal failure.
var ErrParameterNotFound = errors.New("parameter not found")

// MissingRequiredParameterError is returned when a change declares the
// "error" policy for an absent parameter. It aborts the remaining changes
// for the current file.
type MissingRequiredParameterError struct {
	Param string
	Block string
}

func (e *MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("required parameter %q not found in block %q", e.Param, e.Block)
}

// MalformedBlockReferenceError reports a block reference that cannot be
// resolved, such as a resource named without its type. It is fatal for the
// offending parameter only; processing of the file continues.
type MalformedBlockReferenceError struct {
	Name   string
	Reason string
}

func (e *MalformedBlockReferenceError) Error() string {
	return fmt.Sprintf("malformed block reference %q: %s", e.Name, e.Reason)
}
