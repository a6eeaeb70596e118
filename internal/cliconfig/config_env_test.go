package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"EVENTD_SERVICE_NAME": "env-svc",
				"EVENTD_STATE_DIR":    "/env/state",
				"EVENTD_LOG_LEVEL":    "debug",
				"EVENTD_STATUS_ADDR":  "127.0.0.1:9100",
				"EVENTD_STOP_TIMEOUT": "45s",
				"EVENTD_FOREGROUND":   "true",
				"EVENTD_WATCH_CONFIG": "1",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ServiceName: "env-svc",
				StateDir:    "/env/state",
				LogLevel:    "debug",
				StatusAddr:  "127.0.0.1:9100",
				StopTimeout: 45 * time.Second,
				Foreground:  true,
				WatchConfig: true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"EVENTD_SERVICE_NAME": "env-svc",
				"EVENTD_LOG_LEVEL":    "debug",
			},
			changed: map[string]bool{"service-name": true},
			initial: Config{ServiceName: "cli-svc"},
			expected: Config{
				ServiceName: "cli-svc",
				LogLevel:    "debug",
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"EVENTD_STOP_TIMEOUT": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"EVENTD_FOREGROUND": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{Foreground: true},
			expected: Config{Foreground: false},
		},
		{
			name:     "leaves values alone when env is empty",
			envVars:  map[string]string{},
			changed:  map[string]bool{},
			initial:  Config{ServiceName: "keep", StopTimeout: time.Second},
			expected: Config{ServiceName: "keep", StopTimeout: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range envKeys {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

var envKeys = []string{
	"EVENTD_SERVICE_NAME",
	"EVENTD_DISPLAY_NAME",
	"EVENTD_DESCRIPTION",
	"EVENTD_STATE_DIR",
	"EVENTD_LOG_LEVEL",
	"EVENTD_STATUS_ADDR",
	"EVENTD_STOP_TIMEOUT",
	"EVENTD_FOREGROUND",
	"EVENTD_WATCH_CONFIG",
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	trueVal := true

	fileConf := FileConfig{
		ServiceName: "file-svc",
		LogLevel:    "warn",
		StateDir:    "/file/state",
		WatchConfig: &trueVal,
	}

	t.Setenv("EVENTD_SERVICE_NAME", "env-svc")
	t.Setenv("EVENTD_LOG_LEVEL", "debug")

	// Simulate CLI flags
	changed := map[string]bool{
		"service-name": true,
	}
	cfg := Config{ServiceName: "cli-svc"}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.ServiceName != "cli-svc" {
		t.Errorf("ServiceName = %v, want cli-svc (CLI should win)", cfg.ServiceName)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug (env should override file)", cfg.LogLevel)
	}
	if cfg.StateDir != "/file/state" {
		t.Errorf("StateDir = %v, want /file/state (file should set)", cfg.StateDir)
	}
	if !cfg.WatchConfig {
		t.Error("WatchConfig = false, want true (file should set)")
	}
}

func TestEnvFlags(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Setenv("EVENTD_STATUS_ADDR", "127.0.0.1:9100")
	t.Setenv("EVENTD_STATE_DIR", "/srv/eventd")

	got := EnvFlags()
	want := []string{"state-dir", "status-addr"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("EnvFlags() = %v, want %v", got, want)
	}
}
