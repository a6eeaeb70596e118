//go:build windows

package signals

import (
	"os"
	"syscall"
)

// shutdownSignals are os.Interrupt (Ctrl+C, Ctrl+Break) and SIGTERM, which
// the Go runtime delivers for console close, logoff and system shutdown.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}

func systemSignals() []os.Signal {
	return nil
}
