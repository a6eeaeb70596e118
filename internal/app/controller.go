package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// Command is a service management keyword accepted on the command line.
type Command string

const (
	CommandInstall   Command = "install"
	CommandUninstall Command = "uninstall"
	CommandStart     Command = "start"
	CommandStop      Command = "stop"
	CommandRestart   Command = "restart"
	CommandStatus    Command = "status"
)

// ParseCommand recognizes a keyword with or without a leading "/" or "--".
// Matching is case-insensitive.
func ParseCommand(arg string) (Command, bool) {
	word := strings.ToLower(arg)
	switch {
	case strings.HasPrefix(word, "--"):
		word = word[2:]
	case strings.HasPrefix(word, "/"):
		word = word[1:]
	}

	switch cmd := Command(word); cmd {
	case CommandInstall, CommandUninstall, CommandStart, CommandStop, CommandRestart, CommandStatus:
		return cmd, true
	}
	return "", false
}

// ControllerConfig contains configuration for the lifecycle controller.
type ControllerConfig struct {
	// ServiceName is the fixed name the process daemonizes under
	ServiceName string

	// Output receives status command output. Defaults to os.Stdout.
	Output io.Writer
}

// ControllerOption configures optional behavior of a Controller.
type ControllerOption func(*Controller)

// WithInstanceLock guards MainLoop with a cross-process lock.
func WithInstanceLock(lock ports.InstanceLock) ControllerOption {
	return func(c *Controller) {
		c.lock = lock
	}
}

// WithStatusRepository lets the status command read the persisted loop status.
func WithStatusRepository(repo ports.StatusRepository) ControllerOption {
	return func(c *Controller) {
		c.statusRepo = repo
	}
}

// Controller turns process arguments into one of three outcomes: a one-shot
// service management action, daemonization, or an argument error. It is the
// single object reachable from the service host trampolines.
type Controller struct {
	cfg        ControllerConfig
	platform   ports.Platform
	reporter   ports.ErrorReporter
	loop       *RunLoop
	lock       ports.InstanceLock
	statusRepo ports.StatusRepository
	logger     ports.Logger
}

// NewController creates the controller and registers it for the trampolines.
// Returns domain.ErrControllerExists if another controller is live.
// Call Close when the controller is no longer needed.
func NewController(
	cfg ControllerConfig,
	platform ports.Platform,
	reporter ports.ErrorReporter,
	loop *RunLoop,
	logger ports.Logger,
	opts ...ControllerOption,
) (*Controller, error) {
	if cfg.ServiceName == "" {
		return nil, fmt.Errorf("%w: service name is required", domain.ErrInvalidConfig)
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	c := &Controller{
		cfg:      cfg,
		platform: platform,
		reporter: reporter,
		loop:     loop,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Close unregisters the controller. Trampolines invoked afterwards fail loudly.
func (c *Controller) Close() {
	unregister(c)
}

// Run handles the process arguments and returns the process exit code.
// Every failure is reported exactly once before a non-success code is returned.
func (c *Controller) Run(args []string) (code domain.ExitCode) {
	defer func() {
		if p := recover(); p != nil {
			f := domain.NewFailure(domain.KindUnclassified, nil, "Unrecognized error: %v", p)
			c.report(f)
			code = f.ExitCode()
		}
	}()

	code, err := c.run(args)
	if err != nil {
		f := domain.AsFailure(err)
		c.report(f)
		return f.ExitCode()
	}
	return code
}

func (c *Controller) run(args []string) (domain.ExitCode, error) {
	if err := c.platform.Handshake(); err != nil {
		return domain.ExitFailed, domain.NewFailure(domain.KindPlatform, err, "Platform handshake failed")
	}

	host, err := c.platform.Acquire()
	if err != nil {
		return domain.ExitFailed, domain.NewFailure(domain.KindPlatform, err, "Service host unavailable")
	}
	defer func() {
		if err := host.Release(); err != nil {
			c.logger.Warn("service host release failed", ports.Err(err))
		}
	}()

	if len(args) == 0 {
		c.logger.Info("daemonizing",
			ports.String("service", c.cfg.ServiceName),
			ports.String("host", c.platform.Variant()),
		)
		platformCode, err := host.Daemonize(c.cfg.ServiceName, MainLoopTrampoline)
		if err != nil {
			return domain.ExitFailed, domain.NewFailure(domain.KindPlatform, err, "Failed to daemonize %s", c.cfg.ServiceName)
		}
		return domain.ExitCode(platformCode), nil
	}

	for _, arg := range args {
		cmd, ok := ParseCommand(arg)
		if !ok || !host.Manageable() {
			return domain.ExitArgs, domain.NewFailure(domain.KindArgument, nil, "Unrecognized argument: %s", arg)
		}
		if err := c.execute(host, cmd); err != nil {
			return domain.ExitFailed, domain.NewFailure(domain.KindPlatform, err, "Failed to %s service %s", cmd, c.cfg.ServiceName)
		}
	}

	return domain.ExitSuccess, nil
}

// execute performs one service management action.
func (c *Controller) execute(host ports.ServiceHost, cmd Command) error {
	c.logger.Info("service command", ports.String("command", string(cmd)), ports.String("service", c.cfg.ServiceName))

	switch cmd {
	case CommandInstall:
		return host.Install()
	case CommandUninstall:
		return host.Uninstall()
	case CommandStart:
		return host.Start()
	case CommandStop:
		return host.Stop()
	case CommandRestart:
		return host.Restart()
	case CommandStatus:
		return c.printStatus(host)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// printStatus writes the service manager status and the persisted loop status.
func (c *Controller) printStatus(host ports.ServiceHost) error {
	svcStatus, err := host.Status()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.cfg.Output, "service %s: %s\n", c.cfg.ServiceName, svcStatus)

	if c.statusRepo == nil {
		return nil
	}
	st, err := c.statusRepo.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load status: %w", err)
	}
	if st.ChangedAt.IsZero() {
		fmt.Fprintln(c.cfg.Output, "run loop: never started")
		return nil
	}
	fmt.Fprintf(c.cfg.Output, "run loop: %s (pid %d, since %s)\n",
		st.State, st.PID, st.ChangedAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}

// MainLoop holds the instance lock and runs the loop until it quits.
func (c *Controller) MainLoop() error {
	if c.lock != nil {
		if err := c.lock.TryLock(); err != nil {
			return err
		}
		defer func() {
			if err := c.lock.Unlock(); err != nil {
				c.logger.Warn("failed to release instance lock", ports.Err(err))
			}
		}()
	}
	return c.loop.Run()
}

// RequestStop asks the active run loop to quit. No-op when it is not running.
func (c *Controller) RequestStop() {
	err := c.loop.RequestQuit()
	switch {
	case err == nil:
		c.logger.Info("quit requested")
	case errors.Is(err, domain.ErrNotRunning):
		c.logger.Debug("quit requested with no active run loop")
	default:
		c.logger.Error("quit request failed", ports.Err(err))
	}
}

// report logs the failure and hands its message to the error reporter.
func (c *Controller) report(f *domain.Failure) {
	c.logger.Error("eventd failed",
		ports.String("kind", f.Kind.String()),
		ports.Err(f),
	)

	defer func() {
		// The reporter is the last line of defense; a panic here must not escape.
		_ = recover()
	}()
	c.reporter.Report(f.Error())
}
