package engine

import (
	"errors"
	"fmt"
)

// ErrNoResponse is returned by MockEngine when its queue is empty.
var ErrNoResponse = errors.New("engine: no canned response")

// ErrUnavailable indicates the engine could not be started.
type ErrUnavailable struct {
	Command string
	Err     error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("analysis engine %q unavailable: %v", e.Command, e.Err)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrExit indicates the engine process exited unsuccessfully.
type ErrExit struct {
	Code   int
	Stderr string
}

func (e *ErrExit) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("analysis engine exited with status %d: %s", e.Code, e.Stderr)
	}
	return fmt.Sprintf("analysis engine exited with status %d", e.Code)
}

// ErrInvalidOutput indicates the engine produced output that is not a
// valid response document.
type ErrInvalidOutput struct {
	Output []byte
	Err    error
}

func (e *ErrInvalidOutput) Error() string {
	return fmt.Sprintf("invalid analysis engine output: %v", e.Err)
}

func (e *ErrInvalidOutput) Unwrap() error { return e.Err }
