package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		count := sess.reg.Len()
		sess.reg.DeleteAll()
		if err := sess.commit(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d projects\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
