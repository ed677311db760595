// Command riskguard-server runs the login-risk scoring HTTP service and
// its companion bundle-maintenance subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "riskguard-server",
		Short: "Synchronous login-risk scoring service",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (optional; env vars and defaults otherwise)")

	cmd.AddCommand(newServeCommand(&configPath))
	cmd.AddCommand(newBundleCommand(&configPath))
	return cmd
}
