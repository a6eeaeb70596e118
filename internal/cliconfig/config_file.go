package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ServiceName string `toml:"service_name"`
	DisplayName string `toml:"display_name"`
	Description string `toml:"description"`
	StateDir    string `toml:"state_dir"`
	LogLevel    string `toml:"log_level"`
	StatusAddr  string `toml:"status_addr"`
	StopTimeout string `toml:"stop_timeout"`
	Foreground  *bool  `toml:"foreground"`
	WatchConfig *bool  `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.eventd/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".eventd", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-name", fc.ServiceName, &cfg.ServiceName)
	s.setString("display-name", fc.DisplayName, &cfg.DisplayName)
	s.setString("description", fc.Description, &cfg.Description)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("status-addr", fc.StatusAddr, &cfg.StatusAddr)

	if err := s.setDuration("stop-timeout", fc.StopTimeout, &cfg.StopTimeout); err != nil {
		return err
	}

	s.setBool("foreground", fc.Foreground, &cfg.Foreground)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
