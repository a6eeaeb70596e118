package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/eventd/internal/adapters/log"
	"github.com/bft-labs/eventd/internal/adapters/report"
	"github.com/bft-labs/eventd/internal/cliconfig"
	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
	"github.com/bft-labs/eventd/pkg/eventd"
	"github.com/bft-labs/eventd/plugins/configwatcher"
	"github.com/bft-labs/eventd/plugins/signals"
	"github.com/bft-labs/eventd/plugins/statusserver"
)

const longHelp = `eventd runs an event loop as a background service.

With no arguments it hands itself to the platform service manager (the
Windows SCM, systemd, launchd or SysV init) and pumps events until the
service is stopped. With arguments it performs the named service management
actions in order and exits. Keywords may be written bare or with a leading
"/" (e.g. /install). Use --foreground to run the loop in this process.`

var exampleUsage = strings.TrimSpace(`
  eventd install start
  eventd /uninstall
  eventd status
  eventd --foreground --status-addr 127.0.0.1:9100
`)

// passthroughFlags are forwarded to the service manager, when set by flag or
// environment, so the installed service starts with the same configuration.
// Service name and state dir are always forwarded.
var passthroughFlags = []string{"log-level", "status-addr", "watch-config", "stop-timeout"}

// newReporter builds the error shim for failures that happen before the
// daemon exists, so a service started by the service manager still surfaces
// them.
var newReporter = func(cfg cliconfig.Config) ports.ErrorReporter {
	name := cfg.ServiceName
	if name == "" {
		name = cliconfig.DefaultServiceName
	}
	return report.New(report.Config{ServiceName: name, Title: cfg.DisplayName}, logAdapter.NewNoopLogger())
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// configError marks failures that happen before the controller exists.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func main() {
	os.Exit(int(run(os.Args[1:])))
}

func run(argv []string) domain.ExitCode {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	code := domain.ExitSuccess

	root := &cobra.Command{
		Use:           "eventd [install|uninstall|start|stop|restart|status]...",
		Short:         "Run an event loop as a background service",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			hasFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if hasFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return &configError{fmt.Errorf("load config: %w", err)}
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return &configError{err}
				}
			} else {
				cfgFile = ""
			}

			// Environment overrides the file but not flags
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return &configError{err}
			}
			if err := cfg.Validate(); err != nil {
				return &configError{err}
			}

			logger, err := logAdapter.NewZerologAdapter(cfg.LogLevel)
			if err != nil {
				return &configError{err}
			}
			logger.Debug("configuration",
				ports.String("service", cfg.ServiceName),
				ports.String("state_dir", cfg.StateDir),
				ports.String("config", cfgFile),
				ports.Bool("foreground", cfg.Foreground),
			)

			code = runController(cfg, cfgFile, serviceArguments(cfg, explicitSettings(changed), cfgFile), args, logger)
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.eventd/config.toml)")
	flags.StringVar(&cfg.ServiceName, "service-name", cfg.ServiceName, "name registered with the service manager")
	flags.StringVar(&cfg.DisplayName, "display-name", cfg.DisplayName, "human-readable service name (defaults to service-name)")
	flags.StringVar(&cfg.Description, "description", cfg.Description, "service description")
	flags.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for status.json and the instance lock (defaults to the user cache dir)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	flags.StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "listen address for /healthz and /metrics (disabled when empty)")
	flags.BoolVar(&cfg.Foreground, "foreground", cfg.Foreground, "run the event loop in this process without a service manager")
	flags.BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload the config file when it changes")
	flags.DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "how long a stop request waits for the event loop")

	root.SetArgs(argv)
	if err := root.Execute(); err != nil {
		newReporter(cfg).Report("eventd: " + err.Error())
		var ce *configError
		if errors.As(err, &ce) {
			return domain.ExitConfig
		}
		return domain.ExitArgs
	}
	return code
}

// serviceArguments builds the service manager's command line from the
// resolved configuration. The service runs under another account and working
// directory, so the service name and state dir are always pinned, the config
// path is made absolute, and settings given by flag or environment are
// carried over.
func serviceArguments(cfg cliconfig.Config, set map[string]bool, cfgFile string) []string {
	var args []string
	if cfgFile != "" {
		args = append(args, "--config="+absPath(cfgFile))
	}
	args = append(args,
		"--service-name="+cfg.ServiceName,
		"--state-dir="+absPath(cfg.StateDir),
	)
	for _, name := range passthroughFlags {
		if !set[name] {
			continue
		}
		var value string
		switch name {
		case "log-level":
			value = cfg.LogLevel
		case "status-addr":
			value = cfg.StatusAddr
		case "watch-config":
			value = strconv.FormatBool(cfg.WatchConfig)
		case "stop-timeout":
			value = cfg.StopTimeout.String()
		}
		args = append(args, fmt.Sprintf("--%s=%s", name, value))
	}
	return args
}

// explicitSettings merges the flags set on the command line with the ones
// set through EVENTD_* variables.
func explicitSettings(changed map[string]bool) map[string]bool {
	set := make(map[string]bool, len(changed))
	for name := range changed {
		set[name] = true
	}
	for _, name := range cliconfig.EnvFlags() {
		set[name] = true
	}
	return set
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// runController builds the daemon from cfg and hands it the positional
// arguments.
func runController(cfg cliconfig.Config, cfgFile string, svcArgs, args []string, logger *logAdapter.ZerologAdapter) domain.ExitCode {
	metrics := statusserver.NewMetrics()

	opts := []eventd.Option{
		eventd.WithLogger(logger),
		eventd.WithRegistrar(newHandlers(cfgFile, logger).register),
		eventd.WithStateObserver(metrics),
		eventd.WithDispatchObserver(metrics),
		eventd.WithPlugin(statusserver.New(statusserver.Config{Addr: cfg.StatusAddr}, metrics)),
	}
	if cfg.Foreground {
		opts = append(opts, eventd.WithPlugin(signals.New(signals.Config{Stop: eventd.Stop})))
	}
	if cfg.WatchConfig {
		opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{Path: cfgFile}))
	}

	d, err := eventd.New(eventd.Config{
		ServiceName: cfg.ServiceName,
		DisplayName: cfg.DisplayName,
		Description: cfg.Description,
		StateDir:    cfg.StateDir,
		Arguments:   svcArgs,
		Foreground:  cfg.Foreground,
		StopTimeout: cfg.StopTimeout,
	}, opts...)
	if err != nil {
		logger.Error("create daemon", ports.Err(err))
		newReporter(cfg).Report("eventd: " + err.Error())
		return domain.ExitFailed
	}
	defer d.Close()

	return domain.ExitCode(d.Run(args))
}
