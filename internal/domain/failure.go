package domain

import (
	"errors"
	"fmt"
)

// ExitCode is the integer a process returns to the surrounding harness.
type ExitCode int

// Exit codes. Success, argument error and generic failure are distinct.
const (
	ExitSuccess    ExitCode = 0
	ExitFailed     ExitCode = 1
	ExitTerminated ExitCode = 2
	ExitArgs       ExitCode = 3
	ExitConfig     ExitCode = 4
)

// FailureKind classifies a failure for exit code mapping.
type FailureKind int

const (
	// KindUnclassified covers anything not matching another kind, including panics.
	KindUnclassified FailureKind = iota

	// KindPlatform covers service layer failures (daemonize, install, uninstall).
	KindPlatform

	// KindArgument covers unrecognized command-line arguments.
	KindArgument
)

// String returns a human-readable representation of the kind.
func (k FailureKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindArgument:
		return "argument"
	default:
		return "unclassified"
	}
}

// Failure is a classified error. Message is what gets reported to the user.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

// NewFailure creates a failure of the given kind.
func NewFailure(kind FailureKind, err error, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Error implements error.
func (f *Failure) Error() string {
	if f.Err != nil && f.Message == "" {
		return f.Err.Error()
	}
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// ExitCode maps the failure kind to the process exit convention.
func (f *Failure) ExitCode() ExitCode {
	if f.Kind == KindArgument {
		return ExitArgs
	}
	return ExitFailed
}

// AsFailure classifies err. Existing failures keep their kind; anything else
// is unclassified. Returns nil for a nil error.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindUnclassified, Err: err}
}
