package ports

import (
	"fmt"
	"time"
)

// Logger is the structured logger every component writes through.
// Implementations must be safe for concurrent use: the run loop, plugins and
// service manager callbacks log from different goroutines.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log message.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

func Time(key string, value time.Time) Field { return Field{Key: key, Value: value} }

// Stringer logs value.String(), e.g. event types and signals.
func Stringer(key string, value fmt.Stringer) Field { return Field{Key: key, Value: value} }

// Err attaches err under the "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Any falls back to the logger's generic encoding.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }
