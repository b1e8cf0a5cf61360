package slicer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for slice job submission.
var (
	// ErrBusy indicates the execution slot is held by another job. The
	// caller should retry later; jobs are never queued.
	ErrBusy = errors.New("slicer is busy")

	// ErrUnsupportedModel indicates the model filename does not carry a
	// recognized 3D-model extension.
	ErrUnsupportedModel = errors.New("model must be an STL or 3MF file")
)

// NotFoundError reports referenced profiles that do not exist on disk.
type NotFoundError struct {
	// Missing holds category/name pairs, e.g. "printer/my-printer".
	Missing []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("profiles not found: %s", strings.Join(e.Missing, ", "))
}

// TimeoutError reports a child process that exceeded the wall-clock bound
// and was terminated.
type TimeoutError struct {
	Bound time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("slicing timed out after %d seconds", int(e.Bound.Seconds()))
}

// EngineError reports an engine run that produced no recognizable output.
// Exit code alone is not trusted as a success signal, so this can carry
// exit code zero.
type EngineError struct {
	ExitCode int

	// Stdout and Stderr are truncated excerpts of the captured process
	// output, bounded to keep response sizes sane.
	Stdout string
	Stderr string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("slicing failed: no GCODE output produced (exit code %d)", e.ExitCode)
}

// IsBusy returns true if the error indicates the execution slot is held.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsNotFound returns true if the error reports missing profiles.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTimeout returns true if the error reports an exceeded time bound.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsEngineFailure returns true if the error reports a run without output.
func IsEngineFailure(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}
