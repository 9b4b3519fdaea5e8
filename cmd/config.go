package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/zjrosen/portman/internal/paths"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the allocation configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _, err := paths.ConfigFile()
		if err != nil {
			return err
		}
		registryPath, err := paths.RegistryFile()
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Config path: %s\nRegistry path: %s\nConfiguration:\n--------------\n%s\n",
			configPath, registryPath, cfg)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in $EDITOR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _, err := paths.ConfigFile()
		if err != nil {
			return err
		}
		editor := os.Getenv("EDITOR")
		if editor == "" {
			return fmt.Errorf("the EDITOR environment variable is not set")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Opening %q with %q\n", configPath, editor)
		edit := exec.Command(editor, configPath) //nolint:gosec // G204: $EDITOR is the user's own choice
		edit.Stdin = os.Stdin
		edit.Stdout = os.Stdout
		edit.Stderr = os.Stderr
		if err := edit.Run(); err != nil {
			return fmt.Errorf("running editor %q: %w", editor, err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}
