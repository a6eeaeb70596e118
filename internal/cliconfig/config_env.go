package cliconfig

import (
	"os"
	"sort"
)

// envVars maps flag names to the environment variables that override them.
var envVars = map[string]string{
	"service-name": "EVENTD_SERVICE_NAME",
	"display-name": "EVENTD_DISPLAY_NAME",
	"description":  "EVENTD_DESCRIPTION",
	"state-dir":    "EVENTD_STATE_DIR",
	"log-level":    "EVENTD_LOG_LEVEL",
	"status-addr":  "EVENTD_STATUS_ADDR",
	"stop-timeout": "EVENTD_STOP_TIMEOUT",
	"foreground":   "EVENTD_FOREGROUND",
	"watch-config": "EVENTD_WATCH_CONFIG",
}

func env(flag string) string {
	return os.Getenv(envVars[flag])
}

// EnvFlags returns the names of the flags whose environment variable is set,
// sorted.
func EnvFlags() []string {
	var names []string
	for flag := range envVars {
		if env(flag) != "" {
			names = append(names, flag)
		}
	}
	sort.Strings(names)
	return names
}

// ApplyEnvConfig applies configuration from environment variables (EVENTD_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-name", env("service-name"), &cfg.ServiceName)
	s.setString("display-name", env("display-name"), &cfg.DisplayName)
	s.setString("description", env("description"), &cfg.Description)
	s.setString("state-dir", env("state-dir"), &cfg.StateDir)
	s.setString("log-level", env("log-level"), &cfg.LogLevel)
	s.setString("status-addr", env("status-addr"), &cfg.StatusAddr)

	if err := s.setDuration("stop-timeout", env("stop-timeout"), &cfg.StopTimeout); err != nil {
		return err
	}

	s.setBoolFromString("foreground", env("foreground"), &cfg.Foreground)
	s.setBoolFromString("watch-config", env("watch-config"), &cfg.WatchConfig)

	return nil
}
