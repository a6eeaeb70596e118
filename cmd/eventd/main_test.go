package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bft-labs/eventd/internal/cliconfig"
	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

type recordingReporter struct {
	msgs []string
}

func (r *recordingReporter) Report(msg string) {
	r.msgs = append(r.msgs, msg)
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		file string
		want domain.ExitCode
	}{
		{name: "unknown flag", args: []string{"--bogus"}, want: domain.ExitArgs},
		{name: "invalid log level", args: []string{"--log-level=loud"}, want: domain.ExitConfig},
		{name: "invalid stop timeout", args: []string{"--stop-timeout=0s"}, want: domain.ExitConfig},
		{name: "malformed config file", file: "service_name = ", want: domain.ExitConfig},
		{name: "invalid env duration in file", file: `stop_timeout = "soon"`, want: domain.ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &recordingReporter{}
			prev := newReporter
			newReporter = func(cliconfig.Config) ports.ErrorReporter { return reporter }
			t.Cleanup(func() { newReporter = prev })

			home := t.TempDir()
			t.Setenv("HOME", home)
			t.Setenv("EVENTD_STOP_TIMEOUT", "")

			args := tt.args
			if tt.file != "" {
				path := filepath.Join(home, "config.toml")
				if err := os.WriteFile(path, []byte(tt.file), 0o600); err != nil {
					t.Fatalf("write config: %v", err)
				}
				args = append(args, "--config", path)
			}
			args = append(args, "--state-dir", filepath.Join(home, "state"))

			if got := run(args); got != tt.want {
				t.Errorf("run(%v) = %v, want %v", args, got, tt.want)
			}
			if len(reporter.msgs) != 1 || !strings.HasPrefix(reporter.msgs[0], "eventd: ") {
				t.Errorf("reported %v, want one eventd error", reporter.msgs)
			}
		})
	}
}

func TestServiceArguments(t *testing.T) {
	cfg := cliconfig.DefaultConfig()
	cfg.ServiceName = "custom"
	cfg.StateDir = "/srv/eventd"
	cfg.LogLevel = "debug"
	cfg.StatusAddr = "127.0.0.1:9100"

	got := serviceArguments(cfg, map[string]bool{"log-level": true, "foreground": true}, "")
	want := []string{"--service-name=custom", "--state-dir=/srv/eventd", "--log-level=debug"}
	assertArgs(t, got, want)
}

func TestServiceArguments_FromEnvironment(t *testing.T) {
	for _, k := range []string{"EVENTD_SERVICE_NAME", "EVENTD_LOG_LEVEL", "EVENTD_STOP_TIMEOUT", "EVENTD_FOREGROUND", "EVENTD_WATCH_CONFIG", "EVENTD_DISPLAY_NAME", "EVENTD_DESCRIPTION"} {
		t.Setenv(k, "")
	}
	t.Setenv("EVENTD_STATE_DIR", "/srv/eventd")
	t.Setenv("EVENTD_STATUS_ADDR", "127.0.0.1:9100")

	cfg := cliconfig.DefaultConfig()
	changed := map[string]bool{}
	if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	got := serviceArguments(cfg, explicitSettings(changed), "")
	want := []string{"--service-name=eventd", "--state-dir=/srv/eventd", "--status-addr=127.0.0.1:9100"}
	assertArgs(t, got, want)
}

func TestServiceArguments_PinsDerivedStateDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("EVENTD_STATE_DIR", "")

	cfg := cliconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	got := serviceArguments(cfg, map[string]bool{}, "")
	want := "--state-dir=" + cfg.StateDir
	if len(got) != 2 || got[1] != want {
		t.Errorf("serviceArguments() = %v, want %q pinned", got, want)
	}
}

func TestServiceArguments_AbsoluteConfig(t *testing.T) {
	cfg := cliconfig.DefaultConfig()
	cfg.StateDir = "state"

	got := serviceArguments(cfg, map[string]bool{}, "config.toml")
	if len(got) != 3 {
		t.Fatalf("serviceArguments() = %v, want three arguments", got)
	}
	for _, arg := range []string{got[0][len("--config="):], got[2][len("--state-dir="):]} {
		if !filepath.IsAbs(arg) {
			t.Errorf("path %q is not absolute", arg)
		}
	}
}

func assertArgs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("serviceArguments() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("serviceArguments()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
