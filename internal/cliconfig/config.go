package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultServiceName is the name eventd registers with the service manager.
const DefaultServiceName = "eventd"

// Config holds CLI configuration for eventd.
type Config struct {
	ServiceName string
	DisplayName string
	Description string

	StateDir   string
	LogLevel   string
	StatusAddr string

	Foreground  bool
	WatchConfig bool
	StopTimeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ServiceName: DefaultServiceName,
		Description: "eventd background event service",
		LogLevel:    "info",
		StopTimeout: 20 * time.Second,
		StateDir:    "", // Derived from the user cache dir during Validate
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	c.ServiceName = strings.TrimSpace(c.ServiceName)
	if c.ServiceName == "" {
		return fmt.Errorf("service-name is required")
	}
	if strings.ContainsAny(c.ServiceName, `/\ `) {
		return fmt.Errorf("service-name %q must not contain slashes or spaces", c.ServiceName)
	}

	if c.DisplayName == "" {
		c.DisplayName = c.ServiceName
	}

	if c.StateDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("state-dir is required (no user cache dir: %w)", err)
		}
		c.StateDir = filepath.Join(dir, c.ServiceName)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log-level %q: %w", c.LogLevel, err)
	}

	if c.StopTimeout <= 0 {
		return fmt.Errorf("stop timeout must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
