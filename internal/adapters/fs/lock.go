package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/bft-labs/eventd/internal/domain"
)

const lockFileName = "eventd.lock"

// InstanceLock implements ports.InstanceLock with an advisory file lock.
type InstanceLock struct {
	dir  string
	lock *flock.Flock
}

// NewInstanceLock creates a lock on eventd.lock inside dir.
func NewInstanceLock(dir string) *InstanceLock {
	return &InstanceLock{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFileName)),
	}
}

// TryLock acquires the lock without blocking.
// Returns domain.ErrInstanceLocked if another process holds it.
func (l *InstanceLock) TryLock() error {
	if err := os.MkdirAll(l.dir, 0o700); err != nil {
		return fmt.Errorf("lock dir: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", domain.ErrInstanceLocked, l.lock.Path())
	}
	return nil
}

// Unlock releases the lock.
func (l *InstanceLock) Unlock() error {
	return l.lock.Unlock()
}

// Path returns the lock file path.
func (l *InstanceLock) Path() string {
	return l.lock.Path()
}
