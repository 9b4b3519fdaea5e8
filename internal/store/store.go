// Package store persists the project registry as a TOML file and provides
// the cross-process mutual exclusion that spans a whole command invocation.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"

	"github.com/zjrosen/portman/internal/log"
	"github.com/zjrosen/portman/internal/registry"
)

const (
	// LockTimeout bounds how long a command waits for another portman
	// process to finish before giving up. Crashed holders are not a
	// concern: the OS releases advisory locks when the process dies.
	LockTimeout = 5 * time.Second

	lockRetryInterval = 50 * time.Millisecond
)

// Data is the persisted registry document.
type Data struct {
	Projects map[string]registry.Project `toml:"projects"`
}

// Store reads and writes the registry file.
type Store struct {
	path string
	lock *flock.Flock
}

// New returns a store backed by the registry file at path.
func New(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the registry file path.
func (s *Store) Path() string {
	return s.path
}

// Lock acquires the exclusive advisory lock for the load-mutate-save cycle,
// waiting up to LockTimeout for a concurrent invocation to finish. The
// returned function releases the lock.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring registry lock at %q: %w", s.lock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("registry is locked by another portman process")
	}
	log.Debug(log.CatStore, "Acquired registry lock", "path", s.lock.Path())
	return func() { _ = s.lock.Unlock() }, nil
}

// Load reads the persisted projects. A missing file is an empty registry.
func (s *Store) Load() (map[string]registry.Project, error) {
	var data Data
	if _, err := toml.DecodeFile(s.path, &data); err != nil {
		if os.IsNotExist(err) {
			log.Debug(log.CatStore, "No registry file, starting empty", "path", s.path)
			return map[string]registry.Project{}, nil
		}
		return nil, fmt.Errorf("reading registry at %q: %w", s.path, err)
	}
	if data.Projects == nil {
		data.Projects = map[string]registry.Project{}
	}
	log.Debug(log.CatStore, "Loaded registry", "path", s.path, "projects", len(data.Projects))
	return data.Projects, nil
}

// Save atomically replaces the registry file with the given projects.
func (s *Store) Save(projects map[string]registry.Project) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "registry-*.toml")
	if err != nil {
		return fmt.Errorf("creating temporary registry file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := toml.NewEncoder(tmp).Encode(Data{Projects: projects}); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encoding registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing registry at %q: %w", s.path, err)
	}

	log.Debug(log.CatStore, "Saved registry", "path", s.path, "projects", len(projects))
	return nil
}
