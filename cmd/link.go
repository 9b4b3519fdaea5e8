package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <port> [name]",
	Short: "Redirect a fixed port to a project",
	Long: `Redirect a fixed port to a project.

The port becomes a local reverse proxy in front of the project's own port,
so it can be pointed at a different project later without restarting any
server. If another project currently holds the port, its link is moved to
the target project in the same step.

Without a name, the project activated by the current directory is used.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := parsePort(args[0])
		if err != nil {
			return err
		}
		var name string
		if len(args) == 2 {
			name = args[1]
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
		if err := sess.reg.Link(name, port); err != nil {
			return err
		}
		if err := sess.commit(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Linked port %d to project %s\n", port, name)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink [name]",
	Short: "Clear a project's linked port",
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
			var err error
			name, _, err = activeProject(sess.reg)
			if err != nil {
				return err
			}
		}
		port, wasLinked, err := sess.reg.Unlink(name)
		if err != nil {
			return err
		}
		if err := sess.commit(); err != nil {
			return err
		}

		if wasLinked {
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked port %d from project %s\n", port, name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s had no linked port\n", name)
		}
		return nil
	},
}

func parsePort(raw string) (uint16, error) {
	port, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", raw, err)
	}
	return uint16(port), nil
}

func init() {
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
}
