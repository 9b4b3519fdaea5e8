package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/portman/internal/caddy"
	"github.com/zjrosen/portman/internal/paths"
)

var caddyfileCmd = &cobra.Command{
	Use:   "caddyfile",
	Short: "Print the generated caddy reverse-proxy configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		if err := sess.commit(); err != nil {
			return err
		}

		gallery, err := paths.GalleryRoot()
		if err != nil {
			return err
		}
		doc := caddy.Generator{GalleryRoot: gallery}.Render(sess.reg.List())
		fmt.Fprint(cmd.OutOrStdout(), doc)
		return nil
	},
}

var reloadCaddyCmd = &cobra.Command{
	Use:   "reload-caddy",
	Short: "Regenerate the caddy configuration and reload caddy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		if err := sess.commit(); err != nil {
			return err
		}
		if err := reloadProxy(sess.reg); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Successfully reloaded caddy")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(caddyfileCmd)
	rootCmd.AddCommand(reloadCaddyCmd)
}
