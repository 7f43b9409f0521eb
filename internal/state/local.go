package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/picklr-io/stagehand/internal/ir"
)

// Manager stores state in a local file.
type Manager struct {
	path string
}

func NewManager(path string) *Manager {
	return &Manager{
		path: path,
	}
}

// Path returns the state file path.
func (m *Manager) Path() string {
	return m.path
}

// Read loads the state from the configured path.
// If the state file is encrypted, it is transparently decrypted before loading.
func (m *Manager) Read(ctx context.Context) (*ir.State, error) {
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", m.path, err)
	}

	state, err := DecodeState(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load state from %s: %w", m.path, err)
	}
	return state, nil
}

// Write saves the state to the configured path, replacing the file atomically.
// If STAGEHAND_STATE_ENCRYPTION_KEY is set, the file is transparently encrypted.
func (m *Manager) Write(ctx context.Context, state *ir.State) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	content, err := marshalState(state)
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", m.path, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write state file %s: %w", m.path, err)
	}
	return nil
}
