package domain

import "errors"

// Domain errors represent error conditions in the eventd domain.
// These errors are returned across package boundaries and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when the run loop is entered while already running.
	ErrAlreadyRunning = errors.New("eventd: already running")

	// ErrNotRunning is returned when a quit is requested with no active run loop.
	ErrNotRunning = errors.New("eventd: not running")

	// ErrControllerExists is returned when a second controller is constructed.
	ErrControllerExists = errors.New("eventd: controller already registered")

	// ErrNoController is returned by trampolines invoked with no registered controller.
	ErrNoController = errors.New("eventd: no controller registered")

	// ErrHostAcquired is returned when the service host is acquired twice.
	ErrHostAcquired = errors.New("eventd: service host already acquired")

	// ErrUnsupported is returned by service hosts for actions they cannot perform.
	ErrUnsupported = errors.New("eventd: unsupported by service host")

	// ErrQueueClosed is returned by event queues after Close.
	ErrQueueClosed = errors.New("eventd: event queue closed")

	// ErrInstanceLocked is returned when another process holds the instance lock.
	ErrInstanceLocked = errors.New("eventd: another instance is running")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("eventd: invalid configuration")
)
