//go:build !windows

package report

import (
	"fmt"

	"github.com/kardianos/service"
)

type noopProgram struct{}

func (noopProgram) Start(service.Service) error { return nil }
func (noopProgram) Stop(service.Service) error  { return nil }

// platformChannel writes to the system log (syslog or journald).
func platformChannel(cfg Config) (string, deliverFunc, error) {
	svc, err := service.New(noopProgram{}, &service.Config{Name: cfg.ServiceName})
	if err != nil {
		return ChannelSystemLog, nil, fmt.Errorf("create service: %w", err)
	}
	logger, err := svc.SystemLogger(nil)
	if err != nil {
		return ChannelSystemLog, nil, fmt.Errorf("system logger: %w", err)
	}
	return ChannelSystemLog, func(msg string) error {
		return logger.Error(msg)
	}, nil
}
