package log

import "github.com/bft-labs/eventd/internal/ports"

// NoopLogger drops everything. Used by the library facade when no logger is
// given, and by tests.
type NoopLogger struct{}

func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (NoopLogger) Debug(string, ...ports.Field) {}
func (NoopLogger) Info(string, ...ports.Field)  {}
func (NoopLogger) Warn(string, ...ports.Field)  {}
func (NoopLogger) Error(string, ...ports.Field) {}

var _ ports.Logger = NoopLogger{}
