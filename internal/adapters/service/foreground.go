package service

import (
	"sync"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// foregroundHost runs the entry point in the calling process with no service
// manager involved. It cannot manage service registrations.
type foregroundHost struct {
	logger      ports.Logger
	release     func()
	releaseOnce sync.Once
}

func newForegroundHost(logger ports.Logger, release func()) *foregroundHost {
	return &foregroundHost{logger: logger, release: release}
}

// Daemonize runs entry on the calling goroutine and returns its exit code.
func (h *foregroundHost) Daemonize(name string, entry ports.EntryPoint) (int, error) {
	h.logger.Info("running in foreground", ports.String("service", name))
	return entry(), nil
}

func (h *foregroundHost) Install() error   { return domain.ErrUnsupported }
func (h *foregroundHost) Uninstall() error { return domain.ErrUnsupported }
func (h *foregroundHost) Start() error     { return domain.ErrUnsupported }
func (h *foregroundHost) Stop() error      { return domain.ErrUnsupported }
func (h *foregroundHost) Restart() error   { return domain.ErrUnsupported }

func (h *foregroundHost) Status() (string, error) {
	return "", domain.ErrUnsupported
}

// Manageable returns false: there is no service manager to talk to.
func (h *foregroundHost) Manageable() bool {
	return false
}

// Release gives the host back to the platform. Idempotent.
func (h *foregroundHost) Release() error {
	h.releaseOnce.Do(h.release)
	return nil
}
