package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultWorkspace is the workspace used when none has been selected.
const DefaultWorkspace = "default"

const (
	workspaceFileName = "workspace"
	stateFileName     = "state.yml"
)

// Workspaces manages the local workspace selection under a state directory.
type Workspaces struct {
	dir string
}

func NewWorkspaces(dir string) *Workspaces {
	return &Workspaces{dir: dir}
}

// StatePath returns the local state file of a workspace.
func StatePath(dir, workspace string) string {
	return filepath.Join(dir, WorkspaceKey(stateFileName, workspace))
}

// Current returns the selected workspace.
func (w *Workspaces) Current() string {
	data, err := os.ReadFile(filepath.Join(w.dir, workspaceFileName))
	if err != nil {
		return DefaultWorkspace
	}
	ws := strings.TrimSpace(string(data))
	if ws == "" {
		return DefaultWorkspace
	}
	return ws
}

// List returns every workspace with a local state file, default first.
func (w *Workspaces) List() ([]string, error) {
	workspaces := []string{DefaultWorkspace}

	entries, err := os.ReadDir(w.dir)
	if os.IsNotExist(err) {
		return workspaces, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "state.") || !strings.HasSuffix(name, ".yml") {
			continue
		}
		ws := strings.TrimSuffix(strings.TrimPrefix(name, "state."), ".yml")
		if ws != "" && ws != "yml" && ws != DefaultWorkspace {
			workspaces = append(workspaces, ws)
		}
	}
	return workspaces, nil
}

// Create writes an empty state for a new workspace and selects it.
func (w *Workspaces) Create(ctx context.Context, name string) error {
	path := StatePath(w.dir, name)
	if name == DefaultWorkspace {
		return fmt.Errorf("%w: %s", ErrWorkspaceExists, name)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrWorkspaceExists, name)
	}

	if err := NewManager(path).Write(ctx, NewState()); err != nil {
		return fmt.Errorf("failed to create workspace state: %w", err)
	}
	return w.Select(name)
}

// Select makes an existing workspace current.
func (w *Workspaces) Select(name string) error {
	if name != DefaultWorkspace {
		if _, err := os.Stat(StatePath(w.dir, name)); os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, name)
		}
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, workspaceFileName), []byte(name), 0o644); err != nil {
		return fmt.Errorf("failed to switch workspace: %w", err)
	}
	return nil
}

// Delete removes a workspace's state. The current and default workspaces
// cannot be deleted.
func (w *Workspaces) Delete(name string) error {
	if name == DefaultWorkspace {
		return fmt.Errorf("cannot delete the default workspace")
	}
	if w.Current() == name {
		return fmt.Errorf("cannot delete the currently active workspace %q", name)
	}

	path := StatePath(w.dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete workspace state: %w", err)
	}
	os.Remove(path + ".lock")
	return nil
}
