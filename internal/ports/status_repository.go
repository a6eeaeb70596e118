package ports

import (
	"context"
	"time"
)

// Status is the persisted view of the run loop lifecycle.
type Status struct {
	Running   bool      `json:"running"`
	State     string    `json:"state"`
	PID       int       `json:"pid"`
	Reason    string    `json:"reason,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// StatusRepository persists the run loop status so that other processes
// (the status command, service managers) can observe it.
type StatusRepository interface {
	// Load retrieves the last saved status.
	// Returns an empty status and nil error if none exists.
	Load(ctx context.Context) (Status, error)

	// Save persists the status atomically.
	Save(ctx context.Context, status Status) error
}

// InstanceLock guards against two processes running the loop at once.
type InstanceLock interface {
	// TryLock acquires the lock without blocking.
	// Returns domain.ErrInstanceLocked if another process holds it.
	TryLock() error

	// Unlock releases the lock.
	Unlock() error
}
