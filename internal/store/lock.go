package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrLockHeld is returned when another pipeline run owns the data
// directory and no override was requested.
var ErrLockHeld = errors.New("data directory is locked by another run")

// Lock is the mutual-exclusion marker written at startup and removed at
// graceful shutdown.
type Lock struct {
	OwnerPID  int       `json:"ownerPid"`
	StartedAt time.Time `json:"startedAt"`
	Model     string    `json:"model"`
}

// LockManager guards the shared data directory against a second
// uncoordinated writer.
type LockManager struct {
	path string
}

// NewLockManager creates a lock manager for the given lock file path.
func NewLockManager(path string) *LockManager {
	return &LockManager{path: path}
}

// Acquire creates the lock file. If a lock file already exists, Acquire
// fails with ErrLockHeld unless force is set, in which case the stale
// lock is overwritten. Presence alone blocks: a lock file that cannot
// be read or parsed still belongs to some other run.
func (m *LockManager) Acquire(model string, force bool) error {
	if _, err := os.Stat(m.path); err == nil && !force {
		existing, readErr := m.read()
		if readErr != nil {
			return fmt.Errorf("%w (lock file unreadable: %v)", ErrLockHeld, readErr)
		}
		return fmt.Errorf("%w (pid %d, started %s)",
			ErrLockHeld, existing.OwnerPID, existing.StartedAt.Format(time.RFC3339))
	}

	lock := Lock{
		OwnerPID:  os.Getpid(),
		StartedAt: time.Now().UTC(),
		Model:     model,
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lock: %w", err)
	}

	return writeFileAtomic(m.path, data)
}

// Release removes the lock file. A missing lock is not an error.
func (m *LockManager) Release() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock: %w", err)
	}
	return nil
}

// read loads the current lock file, if any.
func (m *LockManager) read() (*Lock, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}

	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("failed to parse lock: %w", err)
	}

	return &lock, nil
}
