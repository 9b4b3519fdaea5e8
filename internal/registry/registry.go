// Package registry implements the portman project registry: the persisted
// collection of projects, deterministic port allocation, directory-based
// activation lookup, and linked-port reassignment.
//
// The registry is an in-memory snapshot. Callers load it from the store,
// apply at most one mutating operation, and persist it back if Dirty reports
// a change. Every operation either fully succeeds or leaves the snapshot
// untouched.
package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zjrosen/portman/internal/config"
	"github.com/zjrosen/portman/internal/log"
)

// Project is a named unit with an autogenerated port, an optional directory
// binding, and an optional linked port.
//
// A zero Directory means the project was created without activation. A zero
// LinkedPort means no port is linked; port 0 is never allocatable, so the
// zero value is unambiguous.
type Project struct {
	Port       uint16 `toml:"port"`
	Directory  string `toml:"directory,omitempty"`
	LinkedPort uint16 `toml:"linked_port,omitempty"`
}

// Entry pairs a project with its name for ordered listings.
type Entry struct {
	Name    string
	Project Project
}

// Registry owns the collection of projects and its uniqueness invariants:
// distinct names, distinct ports, distinct directories, and distinct linked
// ports. The byDirectory and byLinkedPort indexes are maintained
// transactionally with the primary map.
type Registry struct {
	cfg          config.Config
	projects     map[string]Project
	byDirectory  map[string]string
	byLinkedPort map[uint16]string
	dirty        bool
}

// New builds a registry from a loaded project snapshot and revalidates it
// against cfg. Projects whose port is no longer admissible (out of range,
// reserved, or colliding after a config change) are transparently
// reallocated and the registry is marked dirty so the fix persists.
func New(cfg config.Config, projects map[string]Project) (*Registry, error) {
	r := &Registry{
		cfg:          cfg,
		projects:     make(map[string]Project, len(projects)),
		byDirectory:  make(map[string]string),
		byLinkedPort: make(map[uint16]string),
	}

	// Process names in sorted order so reallocation is deterministic.
	names := make([]string, 0, len(projects))
	for name := range projects {
		names = append(names, name)
	}
	sort.Strings(names)

	reserved := cfg.ReservedSet()
	// ownPorts tracks own ports seen so far to detect collisions. avoid
	// holds every port a reallocation must not pick: all existing own ports
	// (so a reallocation never steals a later project's valid port) and all
	// linked ports. An existing own port may legitimately equal some
	// project's linked port, only fresh picks must avoid them.
	ownPorts := make(map[uint16]struct{}, len(projects))
	avoid := make(map[uint16]struct{}, len(projects)*2)
	for _, name := range names {
		avoid[projects[name].Port] = struct{}{}
		if projects[name].LinkedPort != 0 {
			avoid[projects[name].LinkedPort] = struct{}{}
		}
	}

	for _, name := range names {
		project := projects[name]
		if !ValidName(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}

		_, taken := ownPorts[project.Port]
		if taken || !inRanges(cfg, project.Port) || contains(reserved, project.Port) {
			port, err := Allocate(cfg, avoid)
			if err != nil {
				return nil, err
			}
			log.Info(log.CatRegistry, "Reallocated invalid port", "project", name, "old", project.Port, "new", port)
			project.Port = port
			r.dirty = true
		}
		ownPorts[project.Port] = struct{}{}
		avoid[project.Port] = struct{}{}

		if project.Directory != "" {
			if holder, ok := r.byDirectory[project.Directory]; ok {
				return nil, fmt.Errorf("%w: projects %s and %s both use directory %q",
					ErrConflictingProject, holder, name, project.Directory)
			}
			r.byDirectory[project.Directory] = name
		}
		if project.LinkedPort != 0 {
			if holder, ok := r.byLinkedPort[project.LinkedPort]; ok {
				return nil, fmt.Errorf("%w: projects %s and %s both link port %d",
					ErrConflictingProject, holder, name, project.LinkedPort)
			}
			r.byLinkedPort[project.LinkedPort] = name
		}
		r.projects[name] = project
	}

	return r, nil
}

// Dirty reports whether the registry has changed since it was loaded.
func (r *Registry) Dirty() bool {
	return r.dirty
}

// Len returns the number of projects.
func (r *Registry) Len() int {
	return len(r.projects)
}

// Get returns the project with the given name.
func (r *Registry) Get(name string) (Project, bool) {
	project, ok := r.projects[name]
	return project, ok
}

// List returns all projects sorted alphabetically by name.
func (r *Registry) List() []Entry {
	entries := make([]Entry, 0, len(r.projects))
	for name, project := range r.projects {
		entries = append(entries, Entry{Name: name, Project: project})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Projects returns a copy of the name to project mapping for persistence.
func (r *Registry) Projects() map[string]Project {
	projects := make(map[string]Project, len(r.projects))
	for name, project := range r.projects {
		projects[name] = project
	}
	return projects
}

// Create adds a new project. When requestedName is empty the name is derived
// from the directory basename. When the resolved name already exists with
// the same directory binding the call is idempotent and returns the existing
// project with created=false. A non-zero linkPort links that port to the new
// project as part of the same atomic operation.
func (r *Registry) Create(requestedName, directory string, linkPort uint16) (string, Project, bool, error) {
	name := requestedName
	derived := false
	if name == "" {
		if directory == "" {
			return "", Project{}, false, fmt.Errorf("%w: a project without a directory needs an explicit name", ErrInvalidName)
		}
		name = NormalizeName(filepath.Base(directory))
		derived = true
		if name == "" {
			return "", Project{}, false, fmt.Errorf("%w: cannot derive a name from directory %q", ErrInvalidName, directory)
		}
	} else if !ValidName(name) {
		return "", Project{}, false, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if existing, ok := r.projects[name]; ok {
		if existing.Directory != directory {
			if derived {
				return "", Project{}, false, fmt.Errorf("%w: %s", ErrDuplicateName, name)
			}
			return "", Project{}, false, fmt.Errorf("%w: project %s already uses %s",
				ErrConflictingProject, name, describeBinding(existing.Directory))
		}
		// Idempotent retry: the project already exists as requested.
		if linkPort != 0 {
			if err := r.Link(name, linkPort); err != nil {
				return "", Project{}, false, err
			}
			existing = r.projects[name]
		}
		log.Debug(log.CatRegistry, "Create matched existing project", "project", name)
		return name, existing, false, nil
	}

	if directory != "" {
		if holder, ok := r.byDirectory[directory]; ok {
			return "", Project{}, false, fmt.Errorf("%w: project %s already uses the directory %q",
				ErrConflictingProject, holder, directory)
		}
	}

	// A fresh port must not collide with any linked port, including the one
	// being requested right now.
	used := r.usedPorts()
	if linkPort != 0 {
		used[linkPort] = struct{}{}
	}
	port, err := Allocate(r.cfg, used)
	if err != nil {
		return "", Project{}, false, err
	}

	project := Project{Port: port, Directory: directory}
	r.projects[name] = project
	if directory != "" {
		r.byDirectory[directory] = name
	}
	if linkPort != 0 {
		r.applyLink(name, linkPort)
		project = r.projects[name]
	}
	r.dirty = true
	log.Info(log.CatRegistry, "Created project", "project", name, "port", port, "directory", directory, "linked", linkPort)
	return name, project, true, nil
}

// SetDirectory rebinds an existing project to a new directory (or clears the
// binding with an empty directory). Used by create --overwrite.
func (r *Registry) SetDirectory(name, directory string) (Project, error) {
	project, ok := r.projects[name]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if directory != "" {
		if holder, ok := r.byDirectory[directory]; ok && holder != name {
			return Project{}, fmt.Errorf("%w: project %s already uses the directory %q",
				ErrConflictingProject, holder, directory)
		}
	}
	if project.Directory == directory {
		return project, nil
	}

	if project.Directory != "" {
		delete(r.byDirectory, project.Directory)
	}
	project.Directory = directory
	if directory != "" {
		r.byDirectory[directory] = name
	}
	r.projects[name] = project
	r.dirty = true
	return project, nil
}

// Delete removes the named project and returns it.
func (r *Registry) Delete(name string) (Project, error) {
	project, ok := r.projects[name]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.projects, name)
	if project.Directory != "" {
		delete(r.byDirectory, project.Directory)
	}
	if project.LinkedPort != 0 {
		delete(r.byLinkedPort, project.LinkedPort)
	}
	r.dirty = true
	log.Info(log.CatRegistry, "Deleted project", "project", name)
	return project, nil
}

// DeleteMany removes the given projects, returning the deleted entries
// sorted by name. Unknown names are an error and nothing is removed.
func (r *Registry) DeleteMany(names []string) ([]Entry, error) {
	for _, name := range names {
		if _, ok := r.projects[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}
	deleted := make([]Entry, 0, len(names))
	for _, name := range names {
		project, err := r.Delete(name)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, Entry{Name: name, Project: project})
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i].Name < deleted[j].Name })
	return deleted, nil
}

// DeleteAll removes every project.
func (r *Registry) DeleteAll() {
	if len(r.projects) == 0 {
		return
	}
	r.projects = make(map[string]Project)
	r.byDirectory = make(map[string]string)
	r.byLinkedPort = make(map[uint16]string)
	r.dirty = true
	log.Info(log.CatRegistry, "Reset registry")
}

// Resolve returns the active project for cwd: the project whose directory is
// an ancestor of (or equal to) cwd. With nested project directories the
// longest matching path wins. The boolean is false when nothing matches.
func (r *Registry) Resolve(cwd string) (string, Project, bool) {
	cwd = filepath.Clean(cwd)
	var (
		bestName string
		bestLen  = -1
	)
	for directory, name := range r.byDirectory {
		if !containsPath(directory, cwd) {
			continue
		}
		if len(directory) > bestLen {
			bestName, bestLen = name, len(directory)
		}
	}
	if bestLen < 0 {
		return "", Project{}, false
	}
	return bestName, r.projects[bestName], true
}

// Link redirects port to the named project. If another project currently
// holds the port as its linked port, that link is cleared in the same step;
// a previous linked port on the target is replaced.
func (r *Registry) Link(name string, port uint16) error {
	project, ok := r.projects[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if port == project.Port {
		return fmt.Errorf("%w: port %d belongs to project %s", ErrInvalidLink, port, name)
	}
	if project.LinkedPort == port {
		return nil
	}
	r.applyLink(name, port)
	r.dirty = true
	log.Info(log.CatRegistry, "Linked port", "project", name, "port", port)
	return nil
}

// Unlink clears the named project's linked port. Returns the cleared port
// and false if no port was linked (a no-op, not an error).
func (r *Registry) Unlink(name string) (uint16, bool, error) {
	project, ok := r.projects[name]
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if project.LinkedPort == 0 {
		return 0, false, nil
	}
	port := project.LinkedPort
	delete(r.byLinkedPort, port)
	project.LinkedPort = 0
	r.projects[name] = project
	r.dirty = true
	log.Info(log.CatRegistry, "Unlinked port", "project", name, "port", port)
	return port, true, nil
}

// applyLink performs the link mutation. Callers have already validated that
// name exists and that port is not the project's own port.
func (r *Registry) applyLink(name string, port uint16) {
	if holder, ok := r.byLinkedPort[port]; ok && holder != name {
		other := r.projects[holder]
		other.LinkedPort = 0
		r.projects[holder] = other
		log.Debug(log.CatRegistry, "Moved linked port", "port", port, "from", holder, "to", name)
	}
	project := r.projects[name]
	if project.LinkedPort != 0 && project.LinkedPort != port {
		delete(r.byLinkedPort, project.LinkedPort)
	}
	project.LinkedPort = port
	r.projects[name] = project
	r.byLinkedPort[port] = name
}

// usedPorts returns every port that a fresh allocation must avoid: all own
// ports plus all linked ports (a new own port colliding with a linked port
// would make the proxy configuration ambiguous).
func (r *Registry) usedPorts() map[uint16]struct{} {
	used := make(map[uint16]struct{}, len(r.projects))
	for _, project := range r.projects {
		used[project.Port] = struct{}{}
		if project.LinkedPort != 0 {
			used[project.LinkedPort] = struct{}{}
		}
	}
	return used
}

// containsPath reports whether path is dir itself or a descendant of dir.
func containsPath(dir, path string) bool {
	dir = filepath.Clean(dir)
	if dir == path {
		return true
	}
	if dir == string(filepath.Separator) {
		return strings.HasPrefix(path, dir)
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

func describeBinding(directory string) string {
	if directory == "" {
		return "no directory"
	}
	return fmt.Sprintf("the directory %q", directory)
}

func inRanges(cfg config.Config, port uint16) bool {
	for _, r := range cfg.Ranges {
		if len(r) == 2 && port >= r[0] && port <= r[1] {
			return true
		}
	}
	return false
}

func contains(set map[uint16]struct{}, port uint16) bool {
	_, ok := set[port]
	return ok
}
