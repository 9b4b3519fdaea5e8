// Package caddy derives the reverse-proxy configuration from a registry
// snapshot and triggers the external caddy process to reload it.
package caddy

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/zjrosen/portman/internal/log"
	"github.com/zjrosen/portman/internal/registry"
)

// Generator renders the Caddyfile for a registry snapshot. GalleryRoot is
// the directory served by the fixed localhost dashboard rule.
type Generator struct {
	GalleryRoot string
}

// Render returns the Caddyfile document for the given projects. It is a pure
// function of the snapshot: one subdomain rule per project, one plain
// localhost rule per linked port, and the fixed dashboard rule. Entries are
// expected in name order (registry.List provides that).
func (g Generator) Render(entries []registry.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "localhost {\n\tfile_server {\n\t\troot %q\n\t}\n}\n", g.GalleryRoot)

	for _, entry := range entries {
		fmt.Fprintf(&b, "\n%s.localhost {\n\treverse_proxy 127.0.0.1:%d\n}\n", entry.Name, entry.Project.Port)
		if entry.Project.LinkedPort != 0 {
			// The linked port is a local reverse proxy, not a direct bind,
			// so it can be retargeted without restarting the server behind it.
			fmt.Fprintf(&b, "\nhttp://localhost:%d {\n\treverse_proxy 127.0.0.1:%d\n}\n", entry.Project.LinkedPort, entry.Project.Port)
		}
	}

	return b.String()
}

// ImportStatement returns the line that the root Caddyfile must contain to
// pick up portman's generated configuration.
func ImportStatement(importPath string) string {
	return fmt.Sprintf("import %q\n", importPath)
}

// MergeImport ensures existing root Caddyfile contents contain the import
// statement for importPath, prepending it when absent. The boolean reports
// whether the contents changed.
func MergeImport(existing, importPath string) (string, bool) {
	statement := ImportStatement(importPath)
	if strings.Contains(existing, statement) {
		return existing, false
	}
	return statement + existing, true
}

// RootCaddyfile returns the path of the caddy service's root Caddyfile,
// located under the homebrew prefix.
func RootCaddyfile() (string, error) {
	prefix := os.Getenv("HOMEBREW_PREFIX")
	if prefix == "" {
		return "", fmt.Errorf("HOMEBREW_PREFIX environment variable is not set")
	}
	return filepath.Join(prefix, "etc", "Caddyfile"), nil
}

// Reload writes the rendered document to importPath, ensures the root
// Caddyfile at rootPath imports it, and asks the running caddy process to
// reload. The registry change that produced doc is already committed by the
// time this runs; failures here are reported to the caller as warnings.
func Reload(doc, importPath, rootPath string) error {
	if err := writeFile(importPath, doc); err != nil {
		return fmt.Errorf("writing generated Caddyfile: %w", err)
	}

	existing, err := os.ReadFile(rootPath) //nolint:gosec // G304: path derives from HOMEBREW_PREFIX
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading root Caddyfile at %q: %w", rootPath, err)
	}
	if merged, changed := MergeImport(string(existing), importPath); changed {
		if err := writeFile(rootPath, merged); err != nil {
			return fmt.Errorf("updating root Caddyfile at %q: %w", rootPath, err)
		}
	}

	cmd := exec.Command("caddy", "reload", "--adapter", "caddyfile", "--config", rootPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		log.ErrorErr(log.CatCaddy, "caddy reload failed", err, "config", rootPath)
		return fmt.Errorf("running caddy reload: %w", err)
	}

	log.Info(log.CatCaddy, "Reloaded caddy", "config", rootPath)
	return nil
}

func writeFile(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(contents), 0o644) //nolint:gosec // config files are world-readable
}
