package registry

import "errors"

// Registry errors
var (
	ErrInvalidName         = errors.New("project name is invalid")
	ErrDuplicateName       = errors.New("a project already has that name")
	ErrConflictingProject  = errors.New("project conflicts with an existing project")
	ErrAllocationExhausted = errors.New("all available ports have been allocated already")
	ErrInvalidLink         = errors.New("a project cannot be linked to its own port")
	ErrNoActiveProject     = errors.New("the current directory does not contain a project")
	ErrNotFound            = errors.New("project does not exist")
)
