// Package cmd implements the portman command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/zjrosen/portman/internal/caddy"
	"github.com/zjrosen/portman/internal/config"
	"github.com/zjrosen/portman/internal/log"
	"github.com/zjrosen/portman/internal/paths"
	"github.com/zjrosen/portman/internal/registry"
	"github.com/zjrosen/portman/internal/store"
)

var version = "dev"

var (
	nameStyle = lipgloss.NewStyle().Bold(true)
	portStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

var rootCmd = &cobra.Command{
	Use:   "portman",
	Short: "Assign stable localhost ports to your development projects",
	Long: `Portman assigns each development project a stable, conflict-free port,
remembers which directory the project lives in, and keeps a caddy
reverse-proxy configuration in sync so every project is reachable at
https://{name}.localhost.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path := os.Getenv("PORTMAN_DEBUG"); path != "" {
			if _, err := log.Init(path); err != nil {
				return fmt.Errorf("opening debug log at %q: %w", path, err)
			}
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// isTTY reports whether stdout is a terminal. Commands print bare
// machine-readable values when it is not, for easier scripting.
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// session bundles the locked store, the loaded registry, and the allocation
// config for the duration of one command invocation.
type session struct {
	cfg    config.Config
	reg    *registry.Registry
	st     *store.Store
	unlock func()
}

// loadConfig loads the allocation config from its default or PORTMAN_CONFIG
// location.
func loadConfig() (config.Config, error) {
	path, custom, err := paths.ConfigFile()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path, custom)
}

// openSession acquires the registry lock and loads the registry. Callers
// must defer sess.close().
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	registryPath, err := paths.RegistryFile()
	if err != nil {
		return nil, err
	}
	st := store.New(registryPath)
	unlock, err := st.Lock(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := st.Load()
	if err != nil {
		unlock()
		return nil, err
	}
	reg, err := registry.New(cfg, projects)
	if err != nil {
		unlock()
		return nil, err
	}

	return &session{cfg: cfg, reg: reg, st: st, unlock: unlock}, nil
}

func (s *session) close() {
	s.unlock()
}

// commit regenerates the proxy configuration and persists the registry if it
// changed. A proxy reload failure is a warning: the registry change is valid
// and still committed, only caddy's view is stale until the next reload.
func (s *session) commit() error {
	if !s.reg.Dirty() {
		return nil
	}

	if err := reloadProxy(s.reg); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("Warning: couldn't reload caddy config: %v", err)))
	}

	return s.st.Save(s.reg.Projects())
}

// reloadProxy renders the current registry snapshot and asks caddy to pick
// it up.
func reloadProxy(reg *registry.Registry) error {
	gallery, err := paths.GalleryRoot()
	if err != nil {
		return err
	}
	importPath, err := paths.CaddyImportFile()
	if err != nil {
		return err
	}
	rootPath, err := caddy.RootCaddyfile()
	if err != nil {
		return err
	}
	doc := caddy.Generator{GalleryRoot: gallery}.Render(reg.List())
	return caddy.Reload(doc, importPath, rootPath)
}

// activeProject resolves the project for the current working directory.
func activeProject(reg *registry.Registry) (string, registry.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", registry.Project{}, fmt.Errorf("getting current directory: %w", err)
	}
	name, project, ok := reg.Resolve(cwd)
	if !ok {
		return "", registry.Project{}, registry.ErrNoActiveProject
	}
	return name, project, nil
}

// resolveTarget returns the named project, or the active project when name
// is empty.
func resolveTarget(reg *registry.Registry, name string) (string, registry.Project, error) {
	if name == "" {
		return activeProject(reg)
	}
	project, ok := reg.Get(name)
	if !ok {
		return "", registry.Project{}, fmt.Errorf("%w: %s", registry.ErrNotFound, name)
	}
	return name, project, nil
}

// formatProject renders a project as `name :3001 -> :3000 (/projects/app1)`.
func formatProject(name string, project registry.Project, tty bool) string {
	out := fmt.Sprintf("%s :%d", name, project.Port)
	if tty {
		out = fmt.Sprintf("%s %s", nameStyle.Render(name), portStyle.Render(fmt.Sprintf(":%d", project.Port)))
	}
	if project.LinkedPort != 0 {
		linked := fmt.Sprintf(" -> :%d", project.LinkedPort)
		if tty {
			linked = " -> " + portStyle.Render(fmt.Sprintf(":%d", project.LinkedPort))
		}
		out += linked
	}
	if project.Directory != "" {
		dir := fmt.Sprintf(" (%s)", project.Directory)
		if tty {
			dir = " " + dimStyle.Render(fmt.Sprintf("(%s)", project.Directory))
		}
		out += dir
	}
	return out
}
