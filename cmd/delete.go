package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a project and free its port",
	Args:  cobra.MaximumNArgs(1),
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

		if name == "" {
			name, _, err = activeProject(sess.reg)
			if err != nil {
				return err
			}
		}
		project, err := sess.reg.Delete(name)
		if err != nil {
			return err
		}
		if err := sess.commit(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", formatProject(name, project, isTTY()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
