package state

import "errors"

var (
	// ErrLocked is returned when another process holds the state lock.
	ErrLocked = errors.New("state is locked by another process")

	// ErrWorkspaceExists is returned when creating a workspace that already exists.
	ErrWorkspaceExists = errors.New("workspace already exists")

	// ErrWorkspaceNotFound is returned when selecting or deleting an unknown workspace.
	ErrWorkspaceNotFound = errors.New("workspace does not exist")
)
