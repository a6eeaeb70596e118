package configwatcher

import "github.com/bft-labs/eventd/pkg/eventd"

// WithConfigWatcher returns an eventd.Option that enables config file watching.
//
// Usage:
//
//	d, err := eventd.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/eventd/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) eventd.Option {
	return eventd.WithPlugin(New(cfg))
}
