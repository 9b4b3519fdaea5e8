package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zjrosen/portman/internal/registry"
)

var (
	createNoActivate bool
	createOverwrite  bool
	createLinkPort   uint16
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a project and allocate a port for it",
	Long: `Create a project and allocate a port for it.

Without a name, the project is named after the current directory. The
current directory becomes the project's directory so that the shell
integration activates it automatically; pass --no-activate (with an
explicit name) to skip the directory binding.

Creating a project that already exists with the same directory binding is
a no-op and prints the existing project.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) == 1 {
			name = args[0]
		}
		if createNoActivate && name == "" {
			return fmt.Errorf("--no-activate requires an explicit project name")
		}

		var directory string
		if !createNoActivate {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			directory = cwd
		}

		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		if createOverwrite {
			// Resolve the target the same way Create would, so overwrite
			// also reaches a project whose name derives from the directory.
			target := name
			if target == "" && directory != "" {
				target = registry.NormalizeName(filepath.Base(directory))
			}
			if _, ok := sess.reg.Get(target); ok {
				if createLinkPort != 0 {
					if err := sess.reg.Link(target, createLinkPort); err != nil {
						return err
					}
				}
				project, err := sess.reg.SetDirectory(target, directory)
				if err != nil {
					return err
				}
				if err := sess.commit(); err != nil {
					return err
				}
				printCreated(cmd, "Updated", target, project)
				return nil
			}
		}

		name, project, created, err := sess.reg.Create(name, directory, createLinkPort)
		if err != nil {
			return err
		}
		if err := sess.commit(); err != nil {
			return err
		}

		verb := "Created"
		if !created {
			verb = "Found"
		}
		printCreated(cmd, verb, name, project)
		return nil
	},
}

func printCreated(cmd *cobra.Command, verb, name string, project registry.Project) {
	if isTTY() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s project %s\n", verb, formatProject(name, project, true))
		return
	}
	// Only print the port when stdout isn't a TTY, for easier scripting.
	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", project.Port)
}

func init() {
	createCmd.Flags().BoolVar(&createNoActivate, "no-activate", false,
		"don't bind the project to the current directory")
	createCmd.Flags().BoolVar(&createOverwrite, "overwrite", false,
		"update the existing project's directory and link instead of failing")
	createCmd.Flags().Uint16Var(&createLinkPort, "link", 0,
		"also link the given port to the new project")
	rootCmd.AddCommand(createCmd)
}
