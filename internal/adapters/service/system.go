package service

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kardianos/service"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// stopRetryInterval spaces repeated stop requests while the entry point has
// not yet brought up its run loop.
const stopRetryInterval = 50 * time.Millisecond

// systemHost delegates to the native service manager through kardianos/service.
type systemHost struct {
	cfg         Config
	stop        func()
	logger      ports.Logger
	release     func()
	releaseOnce sync.Once

	// exit terminates the process when the entry point returns on its own
	// while the service manager still owns the process.
	exit func(code int)
}

func newSystemHost(cfg Config, stop func(), logger ports.Logger, release func()) *systemHost {
	return &systemHost{
		cfg:     cfg,
		stop:    stop,
		logger:  logger,
		release: release,
		exit:    os.Exit,
	}
}

func (h *systemHost) service(name string, prg service.Interface) (service.Service, error) {
	svc, err := service.New(prg, &service.Config{
		Name:        name,
		DisplayName: h.cfg.DisplayName,
		Description: h.cfg.Description,
		Arguments:   h.cfg.Arguments,
	})
	if err != nil {
		return nil, fmt.Errorf("create service %s: %w", name, err)
	}
	return svc, nil
}

// Daemonize runs entry under the service manager and returns its exit code
// once the service manager stops the service.
func (h *systemHost) Daemonize(name string, entry ports.EntryPoint) (int, error) {
	prg := newProgram(entry, h.stop, h.cfg.StopTimeout, h.logger, h.exit)
	svc, err := h.service(name, prg)
	if err != nil {
		return int(domain.ExitFailed), err
	}

	h.logger.Info("handing control to service manager",
		ports.String("service", name),
		ports.String("platform", svc.Platform()),
		ports.Bool("interactive", service.Interactive()),
	)
	if err := svc.Run(); err != nil {
		return int(domain.ExitFailed), fmt.Errorf("run service: %w", err)
	}
	return prg.exitCode(), nil
}

func (h *systemHost) control(action string, fn func(service.Service) error) error {
	svc, err := h.service(h.cfg.ServiceName, &program{})
	if err != nil {
		return err
	}
	if err := fn(svc); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	h.logger.Info("service "+action+" complete", ports.String("service", h.cfg.ServiceName))
	return nil
}

func (h *systemHost) Install() error {
	return h.control("install", service.Service.Install)
}

func (h *systemHost) Uninstall() error {
	return h.control("uninstall", service.Service.Uninstall)
}

func (h *systemHost) Start() error {
	return h.control("start", service.Service.Start)
}

func (h *systemHost) Stop() error {
	return h.control("stop", service.Service.Stop)
}

func (h *systemHost) Restart() error {
	return h.control("restart", service.Service.Restart)
}

// Status reports the service manager's view of the service.
func (h *systemHost) Status() (string, error) {
	svc, err := h.service(h.cfg.ServiceName, &program{})
	if err != nil {
		return "", err
	}
	st, err := svc.Status()
	if err != nil {
		if errors.Is(err, service.ErrNotInstalled) {
			return "not installed", nil
		}
		return "", fmt.Errorf("status: %w", err)
	}
	return statusString(st), nil
}

func statusString(st service.Status) string {
	switch st {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Manageable returns true: install, uninstall and control actions are available.
func (h *systemHost) Manageable() bool {
	return true
}

// Release gives the host back to the platform. Idempotent.
func (h *systemHost) Release() error {
	h.releaseOnce.Do(h.release)
	return nil
}

// program implements service.Interface around a parameterless entry point.
type program struct {
	entry   ports.EntryPoint
	stop    func()
	timeout time.Duration
	logger  ports.Logger
	exit    func(int)

	done     chan struct{}
	code     atomic.Int32
	stopping atomic.Bool
}

func newProgram(entry ports.EntryPoint, stop func(), timeout time.Duration, logger ports.Logger, exit func(int)) *program {
	return &program{
		entry:   entry,
		stop:    stop,
		timeout: timeout,
		logger:  logger,
		exit:    exit,
		done:    make(chan struct{}),
	}
}

// Start runs the entry point on its own goroutine; the service manager
// expects Start to return promptly.
func (p *program) Start(s service.Service) error {
	if p.entry == nil {
		return errors.New("no entry point")
	}
	go func() {
		code := p.entry()
		p.code.Store(int32(code))
		close(p.done)

		if !p.stopping.Load() {
			p.logger.Info("run loop exited without stop request", ports.Int("code", code))
			p.exit(code)
		}
	}()
	return nil
}

// Stop asks the run loop to quit and waits for the entry point to return.
// The request is repeated until the loop is up to receive it.
func (p *program) Stop(s service.Service) error {
	if p.done == nil {
		return nil
	}
	p.stopping.Store(true)

	deadline := time.NewTimer(p.timeout)
	defer deadline.Stop()
	retry := time.NewTicker(stopRetryInterval)
	defer retry.Stop()

	p.stop()
	for {
		select {
		case <-p.done:
			return nil
		case <-retry.C:
			p.stop()
		case <-deadline.C:
			return fmt.Errorf("run loop did not stop within %s", p.timeout)
		}
	}
}

func (p *program) exitCode() int {
	return int(p.code.Load())
}
