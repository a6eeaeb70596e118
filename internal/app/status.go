package app

import (
	"context"
	"os"
	"time"

	"github.com/bft-labs/eventd/internal/ports"
)

// StatusRecorder persists every lifecycle transition so that processes other
// than the daemon can observe whether the run loop is active.
type StatusRecorder struct {
	repo   ports.StatusRepository
	logger ports.Logger
	now    func() time.Time
}

// NewStatusRecorder creates a recorder saving into repo.
func NewStatusRecorder(repo ports.StatusRepository, logger ports.Logger) *StatusRecorder {
	return &StatusRecorder{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// OnStateChange implements EventEmitter.
func (s *StatusRecorder) OnStateChange(previous, current State, reason string) {
	status := ports.Status{
		Running:   current == StateRunning,
		State:     current.String(),
		PID:       os.Getpid(),
		Reason:    reason,
		ChangedAt: s.now().UTC(),
	}
	if err := s.repo.Save(context.Background(), status); err != nil {
		s.logger.Warn("failed to save status", ports.Err(err))
	}
}
