//go:build !windows

package signals

import (
	"os"
	"syscall"
)

// shutdownSignals are SIGINT (Ctrl+C) and SIGTERM, sent by process
// managers and container runtimes to request a graceful stop.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}

// systemSignals are posted into the run loop as system events.
func systemSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGUSR1}
}
