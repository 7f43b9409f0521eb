package state

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/picklr-io/stagehand/internal/config"
	"github.com/picklr-io/stagehand/internal/ir"
)

// Backend defines the interface for state storage backends.
type Backend interface {
	// Read loads the state from the backend.
	Read(ctx context.Context) (*ir.State, error)

	// Write saves the state to the backend.
	Write(ctx context.Context, state *ir.State) error

	// Lock acquires an exclusive lock on the state.
	Lock(ctx context.Context) error

	// Unlock releases the lock on the state.
	Unlock(ctx context.Context) error
}

// Backend types.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// NewBackend creates the state backend for a workspace.
func NewBackend(ctx context.Context, cfg config.StateConfig, workspace string) (Backend, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return NewManager(StatePath(cfg.Dir, workspace)), nil
	case BackendS3:
		return newS3Backend(ctx, cfg, WorkspaceKey(cfg.Key, workspace))
	case BackendMinio:
		return newMinioBackend(cfg, WorkspaceKey(cfg.Key, workspace))
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Backend)
	}
}

// WorkspaceKey derives the object key of a workspace's state from the
// default workspace's key: state.yml becomes state.<workspace>.yml.
func WorkspaceKey(key, workspace string) string {
	if workspace == "" || workspace == DefaultWorkspace {
		return key
	}
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "." + workspace + ext
}
