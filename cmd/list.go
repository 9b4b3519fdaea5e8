package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects alphabetically",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		// Persist any load-time port revalidation even on a read.
		if err := sess.commit(); err != nil {
			return err
		}

		tty := isTTY()
		for _, entry := range sess.reg.List() {
			fmt.Fprintln(cmd.OutOrStdout(), formatProject(entry.Name, entry.Project, tty))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
