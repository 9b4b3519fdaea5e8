package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getExtended bool

var getCmd = &cobra.Command{
	Use:   "get [name]",
	Short: "Print the port allocated to a project",
	Long: `Print the port allocated to a project.

Without a name, the project activated by the current directory is used.

With --extended and a non-terminal stdout, the output is the four-line
machine-readable form consumed by the shell hooks: port, name, directory,
linked port (blank lines for absent values).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) == 1 {
			name = args[0]
		}

		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		name, project, err := resolveTarget(sess.reg, name)
		if err != nil {
			return err
		}
		// Persist any load-time port revalidation even on a read.
		if err := sess.commit(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !getExtended {
			fmt.Fprintf(out, "%d\n", project.Port)
			return nil
		}

		linked := ""
		if project.LinkedPort != 0 {
			linked = fmt.Sprintf("%d", project.LinkedPort)
		}
		if isTTY() {
			fmt.Fprintf(out, "port: %d\nname: %s\ndirectory: %s\nlinked port: %s\n",
				project.Port, name, project.Directory, linked)
		} else {
			fmt.Fprintf(out, "%d\n%s\n%s\n%s\n", project.Port, name, project.Directory, linked)
		}
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVar(&getExtended, "extended", false,
		"print the project's name, directory, and linked port as well")
	rootCmd.AddCommand(getCmd)
}
