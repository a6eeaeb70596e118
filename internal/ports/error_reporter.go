package ports

// ErrorReporter surfaces a single human-readable message through whichever
// channel the current session can see. Report must never panic.
type ErrorReporter interface {
	Report(msg string)
}

// Surface is a dummy interactive surface some service hosts need to receive
// control events. It is opened before the run loop and closed after it.
type Surface interface {
	Open() error
	Close() error
}
