// Package service adapts OS service managers to ports.Platform and
// ports.ServiceHost.
//
// Three host variants are selected once at startup: WindowsService and
// UnixDaemon delegate to kardianos/service (SCM, systemd, launchd, SysV),
// Foreground runs the entry point directly in the calling process.
package service

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// Host variants.
const (
	VariantWindowsService = "windows-service"
	VariantUnixDaemon     = "unix-daemon"
	VariantForeground     = "foreground"
)

// DefaultStopTimeout bounds how long a stop request waits for the run loop.
const DefaultStopTimeout = 20 * time.Second

// Config contains the service registration settings.
type Config struct {
	ServiceName string
	DisplayName string
	Description string

	// Arguments are passed to the executable when the service manager starts it
	Arguments []string

	// Foreground selects the Foreground variant regardless of platform
	Foreground bool

	// StopTimeout bounds how long a stop request waits for the run loop
	StopTimeout time.Duration
}

// SelectVariant picks the host variant for the target platform.
func SelectVariant(foreground bool, goos string) string {
	switch {
	case foreground:
		return VariantForeground
	case goos == "windows":
		return VariantWindowsService
	default:
		return VariantUnixDaemon
	}
}

// Platform implements ports.Platform. It hands out at most one host at a time.
type Platform struct {
	cfg     Config
	variant string
	stop    func()
	logger  ports.Logger

	handshakeOnce sync.Once
	handshakeErr  error
	acquired      atomic.Bool
}

// NewPlatform creates the platform for the running OS. stop is invoked when
// the service manager requests a stop; it must make the run loop quit.
func NewPlatform(cfg Config, stop func(), logger ports.Logger) *Platform {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = cfg.ServiceName
	}
	return &Platform{
		cfg:     cfg,
		variant: SelectVariant(cfg.Foreground, runtime.GOOS),
		stop:    stop,
		logger:  logger,
	}
}

// Variant returns the selected host variant.
func (p *Platform) Variant() string {
	return p.variant
}

// Handshake performs one-time platform setup. Later calls return the first result.
func (p *Platform) Handshake() error {
	p.handshakeOnce.Do(func() {
		p.handshakeErr = handshake(p.logger)
	})
	return p.handshakeErr
}

// Acquire returns the process's service host.
// Returns domain.ErrHostAcquired until the previous host is released.
func (p *Platform) Acquire() (ports.ServiceHost, error) {
	if !p.acquired.CompareAndSwap(false, true) {
		return nil, domain.ErrHostAcquired
	}
	release := func() { p.acquired.Store(false) }

	if p.variant == VariantForeground {
		return newForegroundHost(p.logger, release), nil
	}
	return newSystemHost(p.cfg, p.stop, p.logger, release), nil
}

// Ensure Platform implements ports.Platform.
var _ ports.Platform = (*Platform)(nil)
