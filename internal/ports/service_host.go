package ports

// EntryPoint is the fixed-signature callback a service host invokes once the
// process is under service manager control. It returns a process exit code.
type EntryPoint func() int

// Platform is the process-wide OS abstraction entry point.
type Platform interface {
	// Variant names the selected host flavor (windows-service, unix-daemon, foreground).
	Variant() string

	// Handshake performs one-time platform setup. Idempotent.
	Handshake() error

	// Acquire returns the single service host for the process.
	// Returns domain.ErrHostAcquired while a previous host is unreleased.
	Acquire() (ServiceHost, error)
}

// ServiceHost performs OS service manager operations.
type ServiceHost interface {
	// Daemonize hands entry to the service manager under the given name and
	// returns the platform exit code once the service run completes.
	Daemonize(name string, entry EntryPoint) (int, error)

	// Install registers the executable as an OS service.
	Install() error

	// Uninstall removes the OS service registration.
	Uninstall() error

	// Start asks the service manager to start the installed service.
	Start() error

	// Stop asks the service manager to stop the installed service.
	Stop() error

	// Restart asks the service manager to restart the installed service.
	Restart() error

	// Status returns the service manager's view of the service.
	Status() (string, error)

	// Manageable returns true if the host can perform service management
	// actions (install, uninstall, start, stop, restart, status).
	Manageable() bool

	// Release gives the host back to the platform.
	Release() error
}
