// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/hsmv/cmd/hsmv/handlers"
)

// Root returns the root command for the hsmv CLI.
//
// Persistent flags are bound to a handlers.Options value shared by every
// subcommand.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "hsmv",
		Short:         "Sync Mullvad relays into Headscale",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Show debug output")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", 0, "Maximum concurrent requests per batch (default from HSMV_MAX_WORKERS or 50)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "Path to a .env file (default .env if present)")

	cmd.AddCommand(Relay(opts))
	cmd.AddCommand(Node(opts))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
