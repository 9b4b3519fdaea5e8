package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete projects whose directory no longer exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		var removed []string
		for _, entry := range sess.reg.List() {
			if entry.Project.Directory == "" {
				continue
			}
			if _, err := os.Stat(entry.Project.Directory); os.IsNotExist(err) {
				removed = append(removed, entry.Name)
			}
		}

		deleted, err := sess.reg.DeleteMany(removed)
		if err != nil {
			return err
		}
		if err := sess.commit(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		noun := "projects"
		if len(deleted) == 1 {
			noun = "project"
		}
		fmt.Fprintf(out, "Deleted %d %s\n", len(deleted), noun)
		for _, entry := range deleted {
			fmt.Fprintln(out, formatProject(entry.Name, entry.Project, isTTY()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
