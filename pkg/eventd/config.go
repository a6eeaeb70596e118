package eventd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the configuration for a Daemon.
type Config struct {
	// ServiceName is the name registered with the service manager (required)
	ServiceName string

	// DisplayName defaults to ServiceName
	DisplayName string

	Description string

	// StateDir holds status.json and the instance lock.
	// Defaults to <user cache dir>/<ServiceName>.
	StateDir string

	// Arguments are passed to the executable when the service manager starts it
	Arguments []string

	// Foreground runs the loop in the calling process with no service manager
	Foreground bool

	// StopTimeout bounds how long a service stop waits for the loop.
	// Default: 20 seconds
	StopTimeout time.Duration
}

// SetDefaults fills unset optional fields.
func (c *Config) SetDefaults() {
	if c.DisplayName == "" {
		c.DisplayName = c.ServiceName
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = 20 * time.Second
	}
	if c.StateDir == "" && c.ServiceName != "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.StateDir = filepath.Join(dir, c.ServiceName)
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("%w: service name is required", ErrInvalidConfig)
	}
	if c.StateDir == "" {
		return fmt.Errorf("%w: state dir is required", ErrInvalidConfig)
	}
	return nil
}
