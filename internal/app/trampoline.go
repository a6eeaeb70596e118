package app

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// current is the registration slot reached by the trampolines. Service
// managers invoke entry points with a fixed signature, so the controller is
// published here instead of being passed along.
var current atomic.Pointer[Controller]

// register publishes c. Fails if another controller is live.
func register(c *Controller) error {
	if !current.CompareAndSwap(nil, c) {
		return domain.ErrControllerExists
	}
	return nil
}

// unregister clears the slot if it still holds c.
func unregister(c *Controller) {
	current.CompareAndSwap(c, nil)
}

// Current returns the registered controller, or nil.
func Current() *Controller {
	return current.Load()
}

// MainLoopTrampoline is the entry point handed to service hosts. It runs the
// registered controller's main loop and returns an exit code.
func MainLoopTrampoline() int {
	c := current.Load()
	if c == nil {
		slotEmpty("main loop")
		return int(domain.ExitFailed)
	}
	if err := c.MainLoop(); err != nil {
		c.report(domain.NewFailure(domain.KindUnclassified, err, "Run loop failed"))
		return int(domain.ExitFailed)
	}
	return int(domain.ExitSuccess)
}

// StopTrampoline asks the registered controller's run loop to quit.
func StopTrampoline() {
	c := current.Load()
	if c == nil {
		slotEmpty("stop")
		return
	}
	c.RequestStop()
}

var (
	fallbackMu     sync.RWMutex
	fallback       ports.ErrorReporter = stderrReporter{}
	fallbackLogger ports.Logger        = discardLogger{}
)

// SetFallbackReporter sets the reporter used when a trampoline runs with no
// registered controller. It returns the previous reporter.
func SetFallbackReporter(r ports.ErrorReporter) ports.ErrorReporter {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	prev := fallback
	fallback = r
	return prev
}

// SetFallbackLogger sets the logger used when a trampoline runs with no
// registered controller. It returns the previous logger.
func SetFallbackLogger(l ports.Logger) ports.Logger {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	prev := fallbackLogger
	fallbackLogger = l
	return prev
}

// slotEmpty logs and reports a trampoline invoked outside a controller's lifetime.
func slotEmpty(entry string) {
	fallbackMu.RLock()
	r, l := fallback, fallbackLogger
	fallbackMu.RUnlock()

	l.Error("trampoline invoked with no controller",
		ports.String("entry", entry),
		ports.Err(domain.ErrNoController))
	r.Report(fmt.Sprintf("%s trampoline invoked: %v", entry, domain.ErrNoController))
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...ports.Field) {}
func (discardLogger) Info(string, ...ports.Field)  {}
func (discardLogger) Warn(string, ...ports.Field)  {}
func (discardLogger) Error(string, ...ports.Field) {}

type stderrReporter struct{}

func (stderrReporter) Report(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}
