package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/portman/internal/shell"
)

var initCmd = &cobra.Command{
	Use:   "init <shell>",
	Short: "Print the shell integration script",
	Long: `Print the shell integration script.

Add the output to your shell configuration to export PORT,
PORTMAN_PROJECT, and PORTMAN_LINKED_PORT whenever the working directory
contains a project:

  portman init fish | source`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"fish"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "fish":
			fmt.Fprint(cmd.OutOrStdout(), shell.Fish())
			return nil
		default:
			return fmt.Errorf("unsupported shell %q (supported: fish)", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
