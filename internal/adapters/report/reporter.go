// Package report delivers fatal error messages to whoever can see them:
// the terminal, a message box, or the system log.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/kardianos/service"

	logadapter "github.com/bft-labs/eventd/internal/adapters/log"
	"github.com/bft-labs/eventd/internal/ports"
)

// Channel names.
const (
	ChannelStderr     = "stderr"
	ChannelMessageBox = "message-box"
	ChannelSystemLog  = "system-log"
)

// Config contains settings for the error reporter.
type Config struct {
	// ServiceName identifies the process in the system log
	ServiceName string

	// Title is the caption of message boxes
	Title string

	// Interactive forces channel selection. Nil detects the session type.
	Interactive *bool
}

// deliverFunc hands one message to a channel.
type deliverFunc func(msg string) error

// Reporter implements ports.ErrorReporter. The channel is chosen once, at
// construction.
type Reporter struct {
	channel  string
	deliver  deliverFunc
	fallback io.Writer
	logger   ports.Logger
}

// New creates a reporter for the current session.
func New(cfg Config, logger ports.Logger) *Reporter {
	if cfg.Title == "" {
		cfg.Title = cfg.ServiceName
	}

	interactive := service.Interactive() || logadapter.Interactive(os.Stderr)
	if cfg.Interactive != nil {
		interactive = *cfg.Interactive
	}

	r := &Reporter{
		channel:  ChannelStderr,
		fallback: os.Stderr,
		logger:   logger,
	}
	r.deliver = r.writeFallback

	if !interactive {
		channel, deliver, err := platformChannel(cfg)
		if err != nil {
			logger.Warn("error report channel unavailable, using stderr",
				ports.String("channel", channel),
				ports.Err(err))
		} else {
			r.channel = channel
			r.deliver = deliver
		}
	}

	logger.Debug("error reporter ready", ports.String("channel", r.channel))
	return r
}

// NewWriter creates a reporter that writes every message to w.
func NewWriter(w io.Writer, logger ports.Logger) *Reporter {
	r := &Reporter{channel: ChannelStderr, fallback: w, logger: logger}
	r.deliver = r.writeFallback
	return r
}

// Channel returns the selected channel name.
func (r *Reporter) Channel() string {
	return r.channel
}

// Report delivers msg. System log reports are also written to the fallback
// writer; a failing or panicking channel falls back to it. Report never panics.
func (r *Reporter) Report(msg string) {
	defer func() {
		if p := recover(); p != nil {
			r.writeFallback(msg)
		}
	}()

	err := r.deliver(msg)
	if err != nil {
		r.logger.Warn("error report delivery failed",
			ports.String("channel", r.channel),
			ports.Err(err))
	}
	// The system log is mirrored to stderr; only the message box stands alone.
	if r.channel == ChannelSystemLog || (err != nil && r.channel != ChannelStderr) {
		_ = r.writeFallback(msg)
	}
}

func (r *Reporter) writeFallback(msg string) error {
	_, err := fmt.Fprintln(r.fallback, msg)
	return err
}

// Ensure Reporter implements ports.ErrorReporter.
var _ ports.ErrorReporter = (*Reporter)(nil)
