package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StaleLockAge is how old a lock may get before another process takes it over.
const StaleLockAge = 10 * time.Minute

// Lock acquires a file lock on the state to prevent concurrent modifications.
func (m *Manager) Lock(ctx context.Context) error {
	lockPath := m.lockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	if info, err := os.Stat(lockPath); err == nil {
		if time.Since(info.ModTime()) <= StaleLockAge {
			return fmt.Errorf("%w (lock file: %s). If this is an error, remove the lock file manually", ErrLocked, lockPath)
		}
		os.Remove(lockPath)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w (lock file: %s)", ErrLocked, lockPath)
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "pid=%d\ntime=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return nil
}

// Unlock releases the state lock.
func (m *Manager) Unlock(ctx context.Context) error {
	lockPath := m.lockPath()
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (m *Manager) lockPath() string {
	return m.path + ".lock"
}
