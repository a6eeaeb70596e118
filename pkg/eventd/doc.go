// Package eventd provides an embeddable daemon that runs an event loop under
// the platform service manager.
//
// eventd can be used as a standalone CLI application (cmd/eventd) or embedded
// as a library in other Go programs.
//
// # Basic Usage
//
//	d, err := eventd.New(eventd.Config{
//	    ServiceName: "myservice",
//	    StateDir:    "/var/lib/myservice",
//	},
//	    eventd.WithHandler(eventd.TypeUser, func(e eventd.Event) {
//	        // handle application events
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	os.Exit(d.Run(os.Args[1:]))
//
// With no arguments [Daemon.Run] hands the process to the service manager
// (Windows SCM, systemd, launchd or SysV init), which then runs the event
// loop until the service is stopped. With arguments it performs service
// management actions (install, uninstall, start, stop, restart, status) in
// order and returns.
//
// # Single Instance
//
// Only one Daemon may exist per process at a time, because the service
// manager calls back into the process through fixed entry points. [New]
// returns [ErrControllerExists] while another Daemon is open.
//
// # Plugins
//
// Plugins live for the duration of one run of the loop:
//
//	import "github.com/bft-labs/eventd/plugins/configwatcher"
//
//	d, err := eventd.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{Path: cfgFile}),
//	)
package eventd
